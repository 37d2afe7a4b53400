package aiquiz

import (
	"encoding/json"
	"fmt"
	"strings"
)

type ValidationKind string

const (
	NoJsonFound          ValidationKind = "no_json_found"
	MalformedJSON        ValidationKind = "malformed_json"
	MissingProblemsField ValidationKind = "missing_problems_field"
	InvalidProblem       ValidationKind = "invalid_problem"
)

const ChoicesPerProblem = 4

// ValidationError means the model answered but its output broke the contract.
// Index is only meaningful for InvalidProblem.
type ValidationError struct {
	Kind   ValidationKind
	Index  int
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Kind == InvalidProblem {
		return fmt.Sprintf("%s at index %d: %s", e.Kind, e.Index, e.Reason)
	}
	if e.Reason == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

// ValidateResponse turns raw model text into a ProblemSet. It does not compare
// the number of problems with the requested count.
func ValidateResponse(raw string, req GenerationRequest) (*ProblemSet, error) {
	obj, ok := ExtractJSON(raw)
	if !ok {
		return nil, &ValidationError{Kind: NoJsonFound, Reason: "no balanced JSON object in model output"}
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(obj), &doc); err != nil {
		return nil, &ValidationError{Kind: MalformedJSON, Reason: err.Error()}
	}

	rawProblems, present := doc["problems"]
	if !present {
		return nil, &ValidationError{Kind: MissingProblemsField, Reason: `"problems" is missing`}
	}
	var items []json.RawMessage
	if err := json.Unmarshal(rawProblems, &items); err != nil || items == nil {
		return nil, &ValidationError{Kind: MissingProblemsField, Reason: `"problems" is not an array`}
	}

	problems := make([]Problem, 0, len(items))
	for i, item := range items {
		p, reason := validateProblem(item, req.IncludeExplanation)
		if reason != "" {
			return nil, &ValidationError{Kind: InvalidProblem, Index: i, Reason: reason}
		}
		problems = append(problems, p)
	}

	return &ProblemSet{
		Subject:       req.Subject,
		Grade:         req.Grade,
		QuestionType:  req.QuestionType,
		Difficulty:    req.Difficulty,
		QuestionCount: req.QuestionCount,
		Problems:      problems,
	}, nil
}

func validateProblem(raw json.RawMessage, wantExplanation bool) (Problem, string) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return Problem{}, "problem is not an object"
	}

	var p Problem
	if reason := decodeString(fields, "question", &p.Question); reason != "" {
		return p, reason
	}
	p.Question = strings.TrimSpace(p.Question)
	if p.Question == "" {
		return p, "question is empty"
	}

	rawChoices, ok := fields["choices"]
	if !ok {
		return p, "choices is missing"
	}
	if err := json.Unmarshal(rawChoices, &p.Choices); err != nil || p.Choices == nil {
		return p, "choices must be an array of strings"
	}
	if len(p.Choices) != ChoicesPerProblem {
		return p, fmt.Sprintf("expected %d choices, got %d", ChoicesPerProblem, len(p.Choices))
	}
	seen := make(map[string]struct{}, len(p.Choices))
	for i, c := range p.Choices {
		c = strings.TrimSpace(c)
		if c == "" {
			return p, fmt.Sprintf("choice %d is empty", i)
		}
		if _, dup := seen[c]; dup {
			return p, fmt.Sprintf("choice %q appears more than once", c)
		}
		seen[c] = struct{}{}
		p.Choices[i] = c
	}

	if reason := decodeString(fields, "answer", &p.Answer); reason != "" {
		return p, reason
	}
	p.Answer = strings.TrimSpace(p.Answer)
	if _, ok := seen[p.Answer]; !ok {
		return p, fmt.Sprintf("answer %q is not one of the choices", p.Answer)
	}

	if wantExplanation {
		if reason := decodeString(fields, "explanation", &p.Explanation); reason != "" {
			return p, reason
		}
		p.Explanation = strings.TrimSpace(p.Explanation)
		if p.Explanation == "" {
			return p, "explanation is empty"
		}
	}

	return p, ""
}

func decodeString(fields map[string]json.RawMessage, name string, dst *string) string {
	raw, ok := fields[name]
	if !ok {
		return name + " is missing"
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return name + " must be a string"
	}
	return ""
}
