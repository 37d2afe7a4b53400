package aiquiz_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saulo-duarte/edugen-api/internal/aiquiz"
)

func requireInputField(t *testing.T, err error, field string) {
	t.Helper()
	var ie *aiquiz.InputError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, field, ie.Field)
}

func TestDecodeRequest(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		req, err := aiquiz.DecodeRequest(strings.NewReader(`{
			"subject": " English ", "grade": 3, "questionType": "curriculum",
			"questionCount": 5, "difficulty": "hard", "includeExplanation": false
		}`))
		require.NoError(t, err)
		assert.Equal(t, "English", req.Subject)
		assert.Equal(t, aiquiz.DifficultyHard, req.Difficulty)
		assert.False(t, req.IncludeExplanation)
	})

	t.Run("ExplanationDefaultsToTrue", func(t *testing.T) {
		req, err := aiquiz.DecodeRequest(strings.NewReader(`{
			"subject": "수학", "grade": 5, "questionType": "교과과정", "questionCount": 3, "difficulty": "보통"
		}`))
		require.NoError(t, err)
		assert.True(t, req.IncludeExplanation)
		assert.Equal(t, aiquiz.DifficultyMedium, req.Difficulty)
	})

	t.Run("GradeOutOfRange", func(t *testing.T) {
		_, err := aiquiz.DecodeRequest(strings.NewReader(`{
			"subject": "English", "grade": 15, "questionType": "curriculum", "questionCount": 5, "difficulty": "hard"
		}`))
		requireInputField(t, err, "grade")
	})

	t.Run("GradeWrongType", func(t *testing.T) {
		_, err := aiquiz.DecodeRequest(strings.NewReader(`{"grade": "three"}`))
		requireInputField(t, err, "grade")
	})

	t.Run("NotAnObject", func(t *testing.T) {
		_, err := aiquiz.DecodeRequest(strings.NewReader(`[1,2]`))
		var ie *aiquiz.InputError
		require.ErrorAs(t, err, &ie)
	})
}

func TestGenerationRequestValidate(t *testing.T) {
	valid := testRequest(5, true)
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		field  string
		mutate func(r *aiquiz.GenerationRequest)
	}{
		{"EmptySubject", "subject", func(r *aiquiz.GenerationRequest) { r.Subject = "" }},
		{"GradeZero", "grade", func(r *aiquiz.GenerationRequest) { r.Grade = 0 }},
		{"GradeThirteen", "grade", func(r *aiquiz.GenerationRequest) { r.Grade = 13 }},
		{"EmptyType", "questionType", func(r *aiquiz.GenerationRequest) { r.QuestionType = "" }},
		{"CountZero", "questionCount", func(r *aiquiz.GenerationRequest) { r.QuestionCount = 0 }},
		{"CountEleven", "questionCount", func(r *aiquiz.GenerationRequest) { r.QuestionCount = 11 }},
		{"UnknownDifficulty", "difficulty", func(r *aiquiz.GenerationRequest) { r.Difficulty = "extreme" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			requireInputField(t, r.Validate(), tt.field)
		})
	}
}

func TestParseDifficulty(t *testing.T) {
	cases := map[string]aiquiz.Difficulty{
		"easy": aiquiz.DifficultyEasy, "EASY": aiquiz.DifficultyEasy, "쉬움": aiquiz.DifficultyEasy,
		"medium": aiquiz.DifficultyMedium, "normal": aiquiz.DifficultyMedium, "보통": aiquiz.DifficultyMedium,
		"hard": aiquiz.DifficultyHard, " 어려움 ": aiquiz.DifficultyHard,
	}
	for in, want := range cases {
		got, ok := aiquiz.ParseDifficulty(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := aiquiz.ParseDifficulty("impossible")
	assert.False(t, ok)
}

func TestBuildPrompt(t *testing.T) {
	req := testRequest(5, true)

	first := aiquiz.BuildPrompt(req, "")
	second := aiquiz.BuildPrompt(req, aiquiz.DefaultLanguage)
	assert.Equal(t, first, second)

	for _, want := range []string{"English", "Grade: 3", "curriculum", "Number of problems: 5", "hard", `"explanation"`, "Korean"} {
		assert.Contains(t, first.User, want)
	}
	assert.NotEmpty(t, first.System)

	noExplain := aiquiz.BuildPrompt(testRequest(5, false), "English")
	assert.Contains(t, noExplain.User, "Do not include an \"explanation\" field.")
	assert.Contains(t, noExplain.User, "Write all problem text in English.")
	assert.NotContains(t, aiquiz.ResponseSchema(testRequest(5, false)), "explanation")
}
