package aiquiz

import "github.com/saulo-duarte/edugen-api/internal/llm"

type AIQuizContainer struct {
	Handler *Handler
	Service Service
}

func NewAIQuizContainer(client llm.Client, recorder Recorder, opts Options) *AIQuizContainer {
	service := NewService(client, recorder, opts)
	handler := NewHandler(service)

	return &AIQuizContainer{
		Handler: handler,
		Service: service,
	}
}
