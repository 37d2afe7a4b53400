package generationlog

import "gorm.io/gorm"

type GenerationLogContainer struct {
	Handler *Handler
	Service Service
}

func NewGenerationLogContainer(db *gorm.DB) *GenerationLogContainer {
	repo := NewRepository(db)
	service := NewService(repo)
	handler := NewHandler(service)

	return &GenerationLogContainer{
		Handler: handler,
		Service: service,
	}
}
