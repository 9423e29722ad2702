package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/learnora/learnora-api/internal/dto"
	"github.com/learnora/learnora-api/internal/models"
	"github.com/learnora/learnora-api/internal/observability"
	"github.com/learnora/learnora-api/internal/repository"
)

var (
	// ErrSurveyNotFound signals that the student has not submitted the
	// onboarding survey yet.
	ErrSurveyNotFound = errors.New("survey profile not found")

	// ErrInvalidSurvey signals a submission rejected beyond struct
	// validation, e.g. a goal that is empty once markup is stripped.
	ErrInvalidSurvey = errors.New("invalid survey submission")
)

// SurveyService stores and returns learning-preference surveys.
type SurveyService interface {
	Submit(ctx context.Context, studentID uint, req dto.SurveySubmitRequest) (dto.SurveyResponse, error)
	Get(ctx context.Context, studentID uint) (dto.SurveyResponse, error)
}

type surveyService struct {
	repo      repository.SurveyProfileRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewSurveyService constructs the survey service.
func NewSurveyService(repo repository.SurveyProfileRepository, validate *validator.Validate, logger zerolog.Logger) SurveyService {
	return &surveyService{
		repo:      repo,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "survey_service").Logger(),
	}
}

func (s *surveyService) Submit(ctx context.Context, studentID uint, req dto.SurveySubmitRequest) (dto.SurveyResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SurveyResponse{}, err
	}

	goal := strings.TrimSpace(s.sanitizer.Sanitize(req.LearningGoal))
	if goal == "" {
		return dto.SurveyResponse{}, fmt.Errorf("%w: learning goal is empty after sanitization", ErrInvalidSurvey)
	}

	now := time.Now().UTC()
	profile := models.SurveyProfile{
		StudentID:            studentID,
		LearningGoal:         goal,
		Objectives:           s.sanitizeList(req.Objectives),
		InterestedSkills:     s.sanitizeList(req.InterestedSkills),
		CurrentLevel:         req.CurrentLevel,
		WeeklyStudyHours:     req.WeeklyStudyHours,
		TargetCompletionTime: req.TargetCompletionTime,
		SurveyCompleted:      true,
		CompletedAt:          &now,
	}

	if err := s.repo.Upsert(ctx, &profile); err != nil {
		return dto.SurveyResponse{}, err
	}

	stored, err := s.repo.GetByStudent(ctx, studentID)
	if err != nil {
		return dto.SurveyResponse{}, err
	}

	observability.SurveySubmissions().Inc()
	s.logger.Info().Uint("student_id", studentID).Msg("survey profile stored")

	return toSurveyResponse(stored), nil
}

func (s *surveyService) Get(ctx context.Context, studentID uint) (dto.SurveyResponse, error) {
	profile, err := s.repo.GetByStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SurveyResponse{}, ErrSurveyNotFound
		}
		return dto.SurveyResponse{}, err
	}
	return toSurveyResponse(profile), nil
}

func (s *surveyService) sanitizeList(values []string) []string {
	cleaned := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(s.sanitizer.Sanitize(value))
		if trimmed == "" {
			continue
		}
		cleaned = append(cleaned, trimmed)
	}
	return cleaned
}

func toSurveyResponse(profile models.SurveyProfile) dto.SurveyResponse {
	return dto.SurveyResponse{
		StudentID:            profile.StudentID,
		LearningGoal:         profile.LearningGoal,
		Objectives:           append([]string{}, profile.Objectives...),
		InterestedSkills:     append([]string{}, profile.InterestedSkills...),
		CurrentLevel:         profile.CurrentLevel,
		WeeklyStudyHours:     profile.WeeklyStudyHours,
		TargetCompletionTime: profile.TargetCompletionTime,
		SurveyCompleted:      profile.SurveyCompleted,
		CompletedAt:          profile.CompletedAt,
		UpdatedAt:            profile.UpdatedAt,
	}
}
