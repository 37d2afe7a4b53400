package questionset

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/saulo-duarte/edugen-api/internal/aiquiz"
	"github.com/saulo-duarte/edugen-api/internal/config"
)

var (
	ErrQuestionSetNotFound = errors.New("question set not found")
	ErrAlreadyGenerating   = errors.New("question set is already being generated")
)

const (
	defaultTitle         = "문제지"
	defaultQuestionType  = "교과과정"
	defaultQuestionCount = aiquiz.MaxQuestionCount
	defaultEstimatedTime = 15

	DefaultPageLimit = 10
	MaxPageLimit     = 50
)

var difficultyScores = map[aiquiz.Difficulty]int{
	aiquiz.DifficultyEasy:   2,
	aiquiz.DifficultyMedium: 3,
	aiquiz.DifficultyHard:   4,
}

// Generator is the synchronous problem generator a run delegates to.
type Generator interface {
	Generate(ctx context.Context, req aiquiz.GenerationRequest, caller aiquiz.Caller) (*aiquiz.Result, error)
}

type QuestionSetService interface {
	Create(ctx context.Context, userID uuid.UUID, in CreateQuestionSetDTO) (*QuestionSet, error)
	List(ctx context.Context, userID uuid.UUID, page, limit int) (*ListResponse, error)
	Get(ctx context.Context, userID uuid.UUID, id string) (*QuestionSet, error)
	Status(ctx context.Context, userID uuid.UUID, id string) (*StatusResponse, error)
	Delete(ctx context.Context, userID uuid.UUID, id string) error
	StartGeneration(ctx context.Context, userID uuid.UUID, id string, caller aiquiz.Caller) (*QuestionSet, error)
	Wait()
}

type questionSetService struct {
	repo      QuestionSetRepository
	generator Generator
	now       func() time.Time
	runs      sync.WaitGroup
}

func NewService(repo QuestionSetRepository, generator Generator) QuestionSetService {
	return &questionSetService{repo: repo, generator: generator, now: time.Now}
}

func (s *questionSetService) Create(ctx context.Context, userID uuid.UUID, in CreateQuestionSetDTO) (*QuestionSet, error) {
	log := config.WithContext(ctx)

	set := &QuestionSet{
		UserID:         userID,
		Title:          strings.TrimSpace(in.Title),
		Subject:        strings.TrimSpace(in.Subject),
		Grade:          in.Grade,
		QuestionType:   strings.TrimSpace(in.QuestionType),
		QuestionCount:  in.QuestionCount,
		EstimatedTime:  in.EstimatedTime,
		HasExplanation: in.HasExplanation,
		Status:         StatusDraft,
	}
	if set.Title == "" {
		set.Title = defaultTitle
	}
	if set.QuestionType == "" {
		set.QuestionType = defaultQuestionType
	}
	if set.QuestionCount == 0 {
		set.QuestionCount = defaultQuestionCount
	}
	if set.EstimatedTime <= 0 {
		set.EstimatedTime = defaultEstimatedTime
	}

	difficulty := aiquiz.DifficultyMedium
	if in.Difficulty != "" {
		d, ok := aiquiz.ParseDifficulty(in.Difficulty)
		if !ok {
			return nil, &aiquiz.InputError{Field: "difficulty", Message: "difficulty must be one of easy, medium, hard"}
		}
		difficulty = d
	}
	set.Difficulty = string(difficulty)

	if err := requestFor(set).Validate(); err != nil {
		log.WithError(err).Warn("Rejected question set")
		return nil, err
	}

	if err := s.repo.Create(ctx, set); err != nil {
		log.WithError(err).Error("Failed to create question set")
		return nil, err
	}

	log.WithField("question_set_id", set.ID.String()).Info("Question set created")
	return set, nil
}

func (s *questionSetService) List(ctx context.Context, userID uuid.UUID, page, limit int) (*ListResponse, error) {
	page = max(page, 1)
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	limit = min(limit, MaxPageLimit)

	sets, total, err := s.repo.ListByUser(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		config.WithContext(ctx).WithError(err).Error("Failed to list question sets")
		return nil, err
	}
	if sets == nil {
		sets = []*QuestionSet{}
	}

	return &ListResponse{
		Data:       sets,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

func (s *questionSetService) Get(ctx context.Context, userID uuid.UUID, id string) (*QuestionSet, error) {
	setID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrQuestionSetNotFound
	}

	set, err := s.repo.GetByID(ctx, setID, userID)
	if err != nil {
		config.WithContext(ctx).WithError(err).Error("Failed to load question set")
		return nil, err
	}
	if set == nil {
		return nil, ErrQuestionSetNotFound
	}
	return set, nil
}

func (s *questionSetService) Status(ctx context.Context, userID uuid.UUID, id string) (*StatusResponse, error) {
	set, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return &StatusResponse{
		ID:             set.ID.String(),
		Status:         set.Status,
		QuestionsCount: len(set.Questions),
		ErrorMessage:   set.ErrorMessage,
		GeneratedAt:    set.GeneratedAt,
	}, nil
}

func (s *questionSetService) Delete(ctx context.Context, userID uuid.UUID, id string) error {
	log := config.WithContext(ctx).WithField("question_set_id", id)

	setID, err := uuid.Parse(id)
	if err != nil {
		return ErrQuestionSetNotFound
	}

	deleted, err := s.repo.Delete(ctx, setID, userID)
	if err != nil {
		log.WithError(err).Error("Failed to delete question set")
		return err
	}
	if !deleted {
		return ErrQuestionSetNotFound
	}

	log.Info("Question set deleted")
	return nil
}

// StartGeneration flips the set to generating and fills it in the
// background. The run outlives the request that started it.
func (s *questionSetService) StartGeneration(ctx context.Context, userID uuid.UUID, id string, caller aiquiz.Caller) (*QuestionSet, error) {
	log := config.WithContext(ctx).WithField("question_set_id", id)

	set, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	ok, err := s.repo.MarkGenerating(ctx, set.ID, userID)
	if err != nil {
		log.WithError(err).Error("Failed to mark question set as generating")
		return nil, err
	}
	if !ok {
		return nil, ErrAlreadyGenerating
	}
	set.Status = StatusGenerating
	set.ErrorMessage = nil

	s.runs.Add(1)
	go func() {
		defer s.runs.Done()
		s.run(context.WithoutCancel(ctx), set, caller)
	}()

	log.Info("Question set generation started")
	return set, nil
}

// Wait blocks until every background run has finished.
func (s *questionSetService) Wait() {
	s.runs.Wait()
}

func (s *questionSetService) run(ctx context.Context, set *QuestionSet, caller aiquiz.Caller) {
	log := config.WithContext(ctx).WithField("question_set_id", set.ID.String())

	result, err := s.generator.Generate(ctx, requestFor(set), caller)
	if err != nil {
		log.WithError(err).WithField("error_kind", aiquiz.ErrorKind(err)).Warn("Question set generation failed")
		if markErr := s.repo.MarkFailed(ctx, set.ID, err.Error()); markErr != nil {
			log.WithError(markErr).Error("Failed to mark question set as failed")
		}
		return
	}

	questions, err := toQuestions(set, result.Problems)
	if err == nil {
		err = s.repo.ReplaceQuestions(ctx, set.ID, questions, result.Metadata.LogID, s.now().UTC())
	}
	if err != nil {
		log.WithError(err).Error("Failed to save generated questions")
		if markErr := s.repo.MarkFailed(ctx, set.ID, "could not save generated questions"); markErr != nil {
			log.WithError(markErr).Error("Failed to mark question set as failed")
		}
		return
	}

	log.WithField("questions", len(questions)).Info("Question set generation completed")
}

func requestFor(set *QuestionSet) aiquiz.GenerationRequest {
	return aiquiz.GenerationRequest{
		Subject:            set.Subject,
		Grade:              set.Grade,
		QuestionType:       set.QuestionType,
		QuestionCount:      set.QuestionCount,
		Difficulty:         aiquiz.Difficulty(set.Difficulty),
		IncludeExplanation: set.HasExplanation,
	}
}

func toQuestions(set *QuestionSet, problems []aiquiz.Problem) ([]*Question, error) {
	perQuestion := int(math.Ceil(float64(set.EstimatedTime) / float64(max(set.QuestionCount, 1))))
	score, ok := difficultyScores[aiquiz.Difficulty(set.Difficulty)]
	if !ok {
		score = difficultyScores[aiquiz.DifficultyMedium]
	}

	questions := make([]*Question, 0, len(problems))
	for i, p := range problems {
		choices, err := json.Marshal(p.Choices)
		if err != nil {
			return nil, err
		}
		q := &Question{
			QuestionNumber:  i + 1,
			QuestionText:    p.Question,
			Choices:         choices,
			CorrectAnswer:   p.Answer,
			DifficultyScore: score,
			EstimatedTime:   perQuestion,
		}
		if p.Explanation != "" {
			explanation := p.Explanation
			q.Explanation = &explanation
		}
		questions = append(questions, q)
	}
	return questions, nil
}
