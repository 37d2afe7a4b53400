package aiquiz

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

var AllDifficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

var difficultyAliases = map[string]Difficulty{
	"easy":   DifficultyEasy,
	"medium": DifficultyMedium,
	"normal": DifficultyMedium,
	"hard":   DifficultyHard,
	"쉬움":     DifficultyEasy,
	"보통":     DifficultyMedium,
	"어려움":    DifficultyHard,
}

var difficultyLabels = map[Difficulty]string{
	DifficultyEasy:   "쉬움",
	DifficultyMedium: "보통",
	DifficultyHard:   "어려움",
}

// ParseDifficulty accepts the canonical names and their Korean labels.
func ParseDifficulty(s string) (Difficulty, bool) {
	d, ok := difficultyAliases[strings.ToLower(strings.TrimSpace(s))]
	return d, ok
}

func (d Difficulty) IsValid() bool {
	_, ok := difficultyLabels[d]
	return ok
}

func (d Difficulty) Label() string {
	return difficultyLabels[d]
}

const (
	MinGrade         = 1
	MaxGrade         = 12
	MinQuestionCount = 1
	MaxQuestionCount = 10
)

type GenerationRequest struct {
	Subject            string     `json:"subject"`
	Grade              int        `json:"grade"`
	QuestionType       string     `json:"questionType"`
	QuestionCount      int        `json:"questionCount"`
	Difficulty         Difficulty `json:"difficulty"`
	IncludeExplanation bool       `json:"includeExplanation"`
}

// InputError reports a request that violates field constraints. It is raised
// before any model call.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var fieldMessages = map[string]string{
	"subject":            "subject is required",
	"grade":              fmt.Sprintf("grade must be an integer between %d and %d", MinGrade, MaxGrade),
	"questionType":       "questionType is required",
	"questionCount":      fmt.Sprintf("questionCount must be between %d and %d", MinQuestionCount, MaxQuestionCount),
	"difficulty":         "difficulty must be one of easy, medium, hard",
	"includeExplanation": "includeExplanation must be a boolean",
}

const requestSchemaJSON = `{
  "type": "object",
  "required": ["subject", "grade", "questionType", "questionCount", "difficulty", "includeExplanation"],
  "properties": {
    "subject":            {"type": "string", "minLength": 1, "maxLength": 100},
    "grade":              {"type": "integer", "minimum": 1, "maximum": 12},
    "questionType":       {"type": "string", "minLength": 1, "maxLength": 100},
    "questionCount":      {"type": "integer", "minimum": 1, "maximum": 10},
    "difficulty":         {"enum": ["easy", "medium", "hard"]},
    "includeExplanation": {"type": "boolean"}
  }
}`

const requestSchemaURL = "schema://generation-request.json"

var requestSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(requestSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("parse request schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(requestSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("add request schema: %w", err)
	}
	return c.Compile(requestSchemaURL)
})

// DecodeRequest reads a JSON body into a normalized, validated request.
// includeExplanation defaults to true when absent.
func DecodeRequest(r io.Reader) (GenerationRequest, error) {
	req := GenerationRequest{IncludeExplanation: true}

	body, err := io.ReadAll(io.LimitReader(r, 1<<20))
	if err != nil {
		return req, &InputError{Message: "could not read request body"}
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && fieldMessages[typeErr.Field] != "" {
			return req, &InputError{Field: typeErr.Field, Message: fieldMessages[typeErr.Field]}
		}
		return req, &InputError{Message: "request body must be a JSON object"}
	}

	req = req.Normalize()
	return req, req.Validate()
}

// Normalize trims text fields and folds difficulty aliases.
func (r GenerationRequest) Normalize() GenerationRequest {
	r.Subject = strings.TrimSpace(r.Subject)
	r.QuestionType = strings.TrimSpace(r.QuestionType)
	if d, ok := ParseDifficulty(string(r.Difficulty)); ok {
		r.Difficulty = d
	}
	return r
}

func (r GenerationRequest) Validate() error {
	schema, err := requestSchema()
	if err != nil {
		return err
	}

	raw, err := json.Marshal(r)
	if err != nil {
		return err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return err
	}

	if err := schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			field := firstFailingField(ve)
			if msg, ok := fieldMessages[field]; ok {
				return &InputError{Field: field, Message: msg}
			}
		}
		return &InputError{Message: "invalid generation request"}
	}
	return nil
}

func firstFailingField(ve *jsonschema.ValidationError) string {
	if len(ve.InstanceLocation) > 0 {
		return ve.InstanceLocation[0]
	}
	for _, cause := range ve.Causes {
		if f := firstFailingField(cause); f != "" {
			return f
		}
	}
	return ""
}
