package aiquiz

type SubjectOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type DifficultyOption struct {
	Value       Difficulty `json:"value"`
	Label       string     `json:"label"`
	Description string     `json:"description"`
}

type OptionsResponse struct {
	Subjects         []SubjectOption    `json:"subjects"`
	Difficulties     []DifficultyOption `json:"difficulties"`
	MinGrade         int                `json:"minGrade"`
	MaxGrade         int                `json:"maxGrade"`
	MinQuestionCount int                `json:"minQuestionCount"`
	MaxQuestionCount int                `json:"maxQuestionCount"`
	Model            string             `json:"model"`
}

var supportedSubjects = []SubjectOption{
	{Value: "수학", Label: "Math"},
	{Value: "국어", Label: "Korean"},
	{Value: "영어", Label: "English"},
	{Value: "과학", Label: "Science"},
	{Value: "사회", Label: "Social Studies"},
	{Value: "음악", Label: "Music"},
	{Value: "미술", Label: "Art"},
	{Value: "체육", Label: "Physical Education"},
}

var difficultyDescriptions = map[Difficulty]string{
	DifficultyEasy:   "basic recall and direct definitions",
	DifficultyMedium: "standard application of concepts",
	DifficultyHard:   "multi-step reasoning and analysis",
}

func buildOptions(model string) OptionsResponse {
	diffs := make([]DifficultyOption, 0, len(AllDifficulties))
	for _, d := range AllDifficulties {
		diffs = append(diffs, DifficultyOption{Value: d, Label: d.Label(), Description: difficultyDescriptions[d]})
	}
	return OptionsResponse{
		Subjects:         supportedSubjects,
		Difficulties:     diffs,
		MinGrade:         MinGrade,
		MaxGrade:         MaxGrade,
		MinQuestionCount: MinQuestionCount,
		MaxQuestionCount: MaxQuestionCount,
		Model:            model,
	}
}
