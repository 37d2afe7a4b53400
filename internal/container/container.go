package container

import (
	"context"
	"fmt"
	"net/http"

	"gorm.io/gorm"

	"github.com/saulo-duarte/edugen-api/internal/aiquiz"
	"github.com/saulo-duarte/edugen-api/internal/auth"
	"github.com/saulo-duarte/edugen-api/internal/config"
	"github.com/saulo-duarte/edugen-api/internal/generationlog"
	"github.com/saulo-duarte/edugen-api/internal/llm"
	"github.com/saulo-duarte/edugen-api/internal/questionset"
	"github.com/saulo-duarte/edugen-api/internal/router"
	"github.com/saulo-duarte/edugen-api/internal/user"
)

type Container struct {
	Settings *config.Settings
	DB       *gorm.DB
	LLM      llm.Client

	UserContainer          *user.UserContainer
	GenerationLogContainer *generationlog.GenerationLogContainer
	AIQuizContainer        *aiquiz.AIQuizContainer
	QuestionSetContainer   *questionset.QuestionSetContainer
}

func New(ctx context.Context, s *config.Settings) (*Container, error) {
	config.InitLogger(s.LogLevel, s.IsProduction())
	auth.Init(s.JWTSecret)
	if s.CryptoKey != "" {
		config.InitCrypto(s.CryptoKey)
	} else {
		config.WithContext(ctx).Warn("CRYPTO_KEY not set, Google refresh tokens cannot be stored")
	}

	db, err := config.Connect(ctx, s.DatabaseDriver, s.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if s.AutoMigrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}

	client, err := llm.NewClient(ctx, llm.Config{
		Provider: s.LLMProvider,
		ProviderConfig: llm.ProviderConfig{
			APIKey:  s.LLMAPIKey,
			Model:   s.LLMModel,
			BaseURL: s.LLMBaseURL,
		},
	})
	if err != nil {
		return nil, err
	}

	logContainer := generationlog.NewGenerationLogContainer(db)
	aiQuizContainer := aiquiz.NewAIQuizContainer(client, logContainer.Service, GenerationOptions(s))
	userContainer := user.NewUserContainer(db, s)
	questionSetContainer := questionset.NewQuestionSetContainer(db, aiQuizContainer.Service)

	config.WithContext(ctx).WithField("model", client.ModelID()).Info("Container initialized")

	return &Container{
		Settings:               s,
		DB:                     db,
		LLM:                    client,
		UserContainer:          userContainer,
		GenerationLogContainer: logContainer,
		AIQuizContainer:        aiQuizContainer,
		QuestionSetContainer:   questionSetContainer,
	}, nil
}

// Migrate creates or updates every table the API owns.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&user.User{},
		&generationlog.Entry{},
		&questionset.QuestionSet{},
		&questionset.Question{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func GenerationOptions(s *config.Settings) aiquiz.Options {
	return aiquiz.Options{
		Timeout:      s.GenerationTimeout,
		MaxTokens:    s.GenerationMaxTokens,
		Temperature:  s.GenerationTemperature,
		Language:     s.GenerationLanguage,
		AllowPartial: s.GenerationAllowPartial,
	}
}

func (c *Container) Router() http.Handler {
	return router.New(router.RouterConfig{
		UserHandler:          c.UserContainer.Handler,
		LogoutHandler:        auth.NewHandler(c.Settings.IsProduction()),
		AIQuizHandler:        c.AIQuizContainer.Handler,
		GenerationLogHandler: c.GenerationLogContainer.Handler,
		QuestionSetHandler:   c.QuestionSetContainer.Handler,
		HealthHandler:        router.Health(c.DB, c.LLM.ModelID()),
		AllowedOrigins:       c.Settings.AllowedOrigins,
	})
}

// Close waits for background question set runs and releases the database.
func (c *Container) Close() error {
	c.QuestionSetContainer.Service.Wait()
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
