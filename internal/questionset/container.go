package questionset

import "gorm.io/gorm"

type QuestionSetContainer struct {
	Handler *Handler
	Service QuestionSetService
}

func NewQuestionSetContainer(db *gorm.DB, generator Generator) *QuestionSetContainer {
	repo := NewRepository(db)
	service := NewService(repo, generator)
	handler := NewHandler(service)

	return &QuestionSetContainer{
		Handler: handler,
		Service: service,
	}
}
