package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/saulo-duarte/edugen-api/internal/aiquiz"
	"github.com/saulo-duarte/edugen-api/internal/config"
	"github.com/saulo-duarte/edugen-api/internal/container"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a problem set from the terminal",
	RunE:  runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.String("subject", "", "subject, e.g. 수학")
	f.Int("grade", 0, "grade level (1-12)")
	f.String("type", "교과과정", "question type")
	f.Int("count", 5, "number of problems (1-10)")
	f.String("difficulty", "medium", "easy, medium or hard")
	f.Bool("explain", true, "include explanations")
	f.Bool("stream", false, "print model output as it arrives")
	_ = generateCmd.MarkFlagRequired("subject")
	_ = generateCmd.MarkFlagRequired("grade")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	subject, _ := f.GetString("subject")
	grade, _ := f.GetInt("grade")
	questionType, _ := f.GetString("type")
	count, _ := f.GetInt("count")
	difficultyFlag, _ := f.GetString("difficulty")
	explain, _ := f.GetBool("explain")
	stream, _ := f.GetBool("stream")

	difficulty, ok := aiquiz.ParseDifficulty(difficultyFlag)
	if !ok {
		return fmt.Errorf("unknown difficulty %q", difficultyFlag)
	}
	req := aiquiz.GenerationRequest{
		Subject:            subject,
		Grade:              grade,
		QuestionType:       questionType,
		QuestionCount:      count,
		Difficulty:         difficulty,
		IncludeExplanation: explain,
	}

	settings, err := config.Load()
	if err != nil {
		return err
	}
	c, err := container.New(cmd.Context(), settings)
	if err != nil {
		return err
	}
	defer c.Close()

	caller := aiquiz.Caller{Endpoint: "cli", UserAgent: "edugen-cli"}
	service := c.AIQuizContainer.Service

	if !stream {
		result, err := service.Generate(cmd.Context(), req, caller)
		if err != nil {
			return err
		}
		return printJSON(result)
	}

	var result *aiquiz.Result
	service.Stream(cmd.Context(), req, caller, aiquiz.StreamCallbacks{
		OnChunk: func(e aiquiz.Event) {
			if e.Type == aiquiz.EventChunk {
				fmt.Fprint(os.Stderr, e.Content)
			}
		},
		OnComplete: func(r *aiquiz.Result) { result = r },
		OnError:    func(e error) { err = e },
	})
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return err
	}
	if result == nil {
		return cmd.Context().Err()
	}
	return printJSON(result)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
