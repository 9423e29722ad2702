package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/learnora/learnora-api/internal/dto"
	"github.com/learnora/learnora-api/internal/models"
	"github.com/learnora/learnora-api/internal/observability"
	"github.com/learnora/learnora-api/internal/repository"
	"github.com/learnora/learnora-api/pkg/ai"
)

// Signals the handler layer maps to machine-readable response codes.
var (
	ErrSurveyRequired     = errors.New("survey must be completed before generating a learning path")
	ErrGenerationRequired = errors.New("no learning path has been generated yet")
	ErrNoMatchingCourses  = errors.New("no catalog courses match the survey profile")
)

// LearningPathService drives the recommendation pipeline: filter, score,
// budget, narrate, plan phases, assemble and persist.
type LearningPathService interface {
	Generate(ctx context.Context, studentID uint, req dto.GenerateLearningPathRequest) (dto.LearningPathResponse, error)
	Get(ctx context.Context, studentID uint) (dto.LearningPathResponse, error)
}

type learningPathService struct {
	courses   repository.CourseRepository
	surveys   repository.SurveyProfileRepository
	paths     repository.LearningPathRepository
	generator ai.TextGenerator
	events    PathEventPublisher
	cache     *redis.Client
	ttl       time.Duration
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewLearningPathService constructs the engine. generator and events may be
// nil: a nil generator pins every narration to the deterministic fallback, a
// nil publisher skips fan-out.
func NewLearningPathService(
	courses repository.CourseRepository,
	surveys repository.SurveyProfileRepository,
	paths repository.LearningPathRepository,
	generator ai.TextGenerator,
	events PathEventPublisher,
	cache *redis.Client,
	ttl time.Duration,
	validate *validator.Validate,
	logger zerolog.Logger,
) LearningPathService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &learningPathService{
		courses:   courses,
		surveys:   surveys,
		paths:     paths,
		generator: generator,
		events:    events,
		cache:     cache,
		ttl:       ttl,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "learning_path_service").Logger(),
		tracer:    otel.Tracer("github.com/learnora/learnora-api/internal/service/learningpath"),
	}
}

func (s *learningPathService) Generate(ctx context.Context, studentID uint, req dto.GenerateLearningPathRequest) (dto.LearningPathResponse, error) {
	start := time.Now()
	spanCtx, span := s.tracer.Start(ctx, "learning_path.generate", trace.WithAttributes(
		attribute.Int64("student.id", int64(studentID)),
		attribute.Bool("custom_payload", req.CustomPath != nil),
	))
	defer span.End()

	profile, err := s.surveys.GetByStudent(spanCtx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LearningPathResponse{}, ErrSurveyRequired
		}
		span.RecordError(err)
		return dto.LearningPathResponse{}, err
	}
	if !profile.SurveyCompleted {
		return dto.LearningPathResponse{}, ErrSurveyRequired
	}

	var (
		path     models.LearningPath
		warnings []string
		narrated bool
	)

	if req.CustomPath != nil {
		if err := s.validator.Struct(req.CustomPath); err != nil {
			return dto.LearningPathResponse{}, err
		}
		path, warnings, err = s.buildCustomPath(studentID, *req.CustomPath)
		if err != nil {
			return dto.LearningPathResponse{}, err
		}
	} else {
		path, narrated, err = s.generatePath(spanCtx, studentID, profile)
		if err != nil {
			span.RecordError(err)
			return dto.LearningPathResponse{}, err
		}
	}

	path.LastGeneratedAt = time.Now().UTC()

	stored, err := s.paths.Replace(spanCtx, &path)
	if err != nil {
		span.RecordError(err)
		observability.PathGenerations().WithLabelValues(path.Source, "error").Inc()
		return dto.LearningPathResponse{}, err
	}

	s.invalidateCache(spanCtx, studentID)

	if s.events != nil {
		summary := stored.Summary.Data()
		s.events.PathGenerated(spanCtx, PathGeneratedEvent{
			StudentID:         studentID,
			Source:            stored.Source,
			Narrated:          narrated,
			TotalCourses:      summary.TotalCourses,
			TotalPhases:       summary.TotalPhases,
			RegenerationCount: stored.RegenerationCount,
			GeneratedAt:       stored.LastGeneratedAt,
		})
	}

	outcome := "fallback"
	if narrated {
		outcome = "narrated"
	}
	if stored.Source == models.PathSourceCustom {
		outcome = "custom"
	}
	observability.PathGenerations().WithLabelValues(stored.Source, outcome).Inc()
	observability.PathGenerationDuration().Observe(time.Since(start).Seconds())

	response, err := s.hydrate(spanCtx, stored)
	if err != nil {
		return dto.LearningPathResponse{}, err
	}
	response.Warnings = warnings

	s.logger.Info().
		Uint("student_id", studentID).
		Str("source", stored.Source).
		Bool("narrated", narrated).
		Int("regeneration_count", stored.RegenerationCount).
		Msg("learning path generated")

	return response, nil
}

func (s *learningPathService) Get(ctx context.Context, studentID uint) (dto.LearningPathResponse, error) {
	if cached, ok := s.fetchCache(ctx, studentID); ok {
		observability.PathCacheRequests().WithLabelValues("hit").Inc()
		return cached, nil
	}

	stored, err := s.paths.GetByStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LearningPathResponse{}, s.missingPathSignal(ctx, studentID)
		}
		return dto.LearningPathResponse{}, err
	}

	response, err := s.hydrate(ctx, stored)
	if err != nil {
		return dto.LearningPathResponse{}, err
	}

	s.writeCache(ctx, studentID, response)
	observability.PathCacheRequests().WithLabelValues("miss").Inc()
	return response, nil
}

// missingPathSignal distinguishes "survey first" from "generate first" when
// no stored plan exists.
func (s *learningPathService) missingPathSignal(ctx context.Context, studentID uint) error {
	profile, err := s.surveys.GetByStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSurveyRequired
		}
		return err
	}
	if !profile.SurveyCompleted {
		return ErrSurveyRequired
	}
	return ErrGenerationRequired
}

// generatePath runs the full pipeline for one student.
func (s *learningPathService) generatePath(ctx context.Context, studentID uint, profile models.SurveyProfile) (models.LearningPath, bool, error) {
	candidates, err := s.collectCandidates(ctx, studentID, profile)
	if err != nil {
		return models.LearningPath{}, false, err
	}
	if len(candidates) == 0 {
		return models.LearningPath{}, false, ErrNoMatchingCourses
	}

	scored := make([]scoredCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		scored = append(scored, scoredCandidate{
			courseCandidate: candidate,
			score:           matchScore(candidate.course, profile),
		})
	}

	budget := courseBudget(profile.TargetCompletionTime, profile.WeeklyStudyHours)
	selected := selectTopCandidates(scored, budget)

	reasonsNarrated := s.annotateReasons(ctx, profile, selected)

	courseIndex := make(map[uint]models.Course, len(selected))
	for _, candidate := range selected {
		courseIndex[candidate.course.ID] = candidate.course
	}

	phases := planPhases(selected, profile.WeeklyStudyHours, profile.TargetCompletionTime)
	phasesNarrated := s.narratePhases(ctx, profile, phases, courseIndex)

	path := models.LearningPath{
		StudentID:          studentID,
		PathTitle:          "Lộ trình học tập: " + strings.TrimSpace(profile.LearningGoal),
		LearningGoal:       profile.LearningGoal,
		Source:             models.PathSourceGenerated,
		Phases:             phases,
		RecommendedCourses: buildRecommendations(selected),
		Summary:            datatypes.NewJSONType(buildSummary(selected, phases, courseIndex)),
	}
	return path, reasonsNarrated && phasesNarrated, nil
}

// collectCandidates builds the ephemeral scoring view: active courses inside
// the level-adjacency window, minus everything the student already owns.
// When the skill filter leaves nothing, it retries level-only so any course
// matching the level keeps the pipeline alive.
func (s *learningPathService) collectCandidates(ctx context.Context, studentID uint, profile models.SurveyProfile) ([]courseCandidate, error) {
	enrolledIDs, err := s.courses.EnrolledCourseIDs(ctx, studentID)
	if err != nil {
		return nil, err
	}
	enrolled := make(map[uint]struct{}, len(enrolledIDs))
	for _, id := range enrolledIDs {
		enrolled[id] = struct{}{}
	}

	levels := allowedCourseLevels(profile.CurrentLevel)

	courses, err := s.courses.ListActive(ctx, repository.CourseFilter{
		Levels:     levels,
		Categories: profile.InterestedSkills,
	})
	if err != nil {
		return nil, err
	}
	candidates := buildCandidates(courses, enrolled)

	if len(candidates) == 0 && len(profile.InterestedSkills) > 0 {
		courses, err = s.courses.ListActive(ctx, repository.CourseFilter{Levels: levels})
		if err != nil {
			return nil, err
		}
		candidates = buildCandidates(courses, enrolled)
	}

	return candidates, nil
}

func buildCandidates(courses []models.Course, enrolled map[uint]struct{}) []courseCandidate {
	candidates := make([]courseCandidate, 0, len(courses))
	for _, course := range courses {
		if _, owned := enrolled[course.ID]; owned {
			continue
		}
		candidates = append(candidates, courseCandidate{
			course: course,
			hours:  parseContentHours(course.Duration),
		})
	}
	return candidates
}

func buildRecommendations(selected []scoredCandidate) []models.PathRecommendation {
	recommendations := make([]models.PathRecommendation, 0, len(selected))
	for i, candidate := range selected {
		recommendations = append(recommendations, models.PathRecommendation{
			CourseID:       candidate.course.ID,
			Reason:         candidate.reason,
			Priority:       i + 1,
			MatchScore:     candidate.score,
			EstimatedHours: candidate.hours,
		})
	}
	return recommendations
}

func buildSummary(selected []scoredCandidate, phases []models.PathPhase, courses map[uint]models.Course) models.PathSummary {
	totalHours := 0.0
	skills := make([]string, 0)
	seen := make(map[string]struct{})
	for _, candidate := range selected {
		totalHours += candidate.hours
		for _, category := range candidate.course.Categories {
			slug := strings.ToLower(strings.TrimSpace(category))
			if slug == "" {
				continue
			}
			if _, ok := seen[slug]; ok {
				continue
			}
			seen[slug] = struct{}{}
			skills = append(skills, slug)
		}
	}

	return models.PathSummary{
		TotalCourses:        len(selected),
		TotalEstimatedHours: math.Round(totalHours*100) / 100,
		TotalPhases:         len(phases),
		SkillsCovered:       skills,
		LevelProgression:    levelProgressionTag(phases, courses),
	}
}

// levelProgressionTag describes the difficulty arc of the plan.
func levelProgressionTag(phases []models.PathPhase, courses map[uint]models.Course) string {
	if len(phases) == 0 {
		return ""
	}
	first := levelLabel(dominantPhaseLevel(phases[0], courses))
	last := levelLabel(dominantPhaseLevel(phases[len(phases)-1], courses))
	if first == last {
		return first
	}
	return first + " → " + last
}

// hydrate replaces stored course ids with catalog snapshots. References that
// no longer resolve are dropped from the view but stay in the stored row.
func (s *learningPathService) hydrate(ctx context.Context, stored models.LearningPath) (dto.LearningPathResponse, error) {
	courses, err := s.courses.ListByIDs(ctx, collectCourseIDs(stored))
	if err != nil {
		return dto.LearningPathResponse{}, err
	}
	index := make(map[uint]models.Course, len(courses))
	for _, course := range courses {
		index[course.ID] = course
	}

	phases := make([]dto.PathPhaseResponse, 0, len(stored.Phases))
	for _, phase := range stored.Phases {
		steps := make([]dto.PathStepResponse, 0, len(phase.Courses))
		for _, step := range phase.Courses {
			var snapshot *dto.CourseSnapshot
			if step.CourseID != nil {
				if course, ok := index[*step.CourseID]; ok {
					view := toCourseSnapshot(course)
					snapshot = &view
				}
			}
			if snapshot == nil && step.Title == "" {
				// generated entry whose course has left the catalog
				continue
			}

			stepView := dto.PathStepResponse{
				CourseID:       step.CourseID,
				Course:         snapshot,
				Title:          step.Title,
				Description:    step.Description,
				Reason:         step.Reason,
				Order:          step.Order,
				MatchScore:     step.MatchScore,
				EstimatedHours: step.EstimatedHours,
			}
			if snapshot == nil {
				stepView.CourseID = nil
			}
			steps = append(steps, stepView)
		}

		phases = append(phases, dto.PathPhaseResponse{
			Title:          phase.Title,
			Description:    phase.Description,
			PhaseRationale: phase.PhaseRationale,
			Order:          phase.Order,
			EstimatedWeeks: phase.EstimatedWeeks,
			EstimatedDays:  phase.EstimatedDays,
			EstimatedTime:  phase.EstimatedTime,
			TotalHours:     phase.TotalHours,
			Courses:        steps,
		})
	}

	recommendations := make([]dto.RecommendationResponse, 0, len(stored.RecommendedCourses))
	for _, rec := range stored.RecommendedCourses {
		course, ok := index[rec.CourseID]
		if !ok {
			continue
		}
		recommendations = append(recommendations, dto.RecommendationResponse{
			Course:         toCourseSnapshot(course),
			Reason:         rec.Reason,
			Priority:       rec.Priority,
			MatchScore:     rec.MatchScore,
			EstimatedHours: rec.EstimatedHours,
		})
	}

	summary := stored.Summary.Data()
	return dto.LearningPathResponse{
		PathTitle:          stored.PathTitle,
		LearningGoal:       stored.LearningGoal,
		Source:             stored.Source,
		Phases:             phases,
		RecommendedCourses: recommendations,
		PathSummary: dto.PathSummaryResponse{
			TotalCourses:        summary.TotalCourses,
			TotalEstimatedHours: summary.TotalEstimatedHours,
			TotalPhases:         summary.TotalPhases,
			SkillsCovered:       append([]string{}, summary.SkillsCovered...),
			LevelProgression:    summary.LevelProgression,
		},
		LastGeneratedAt:   stored.LastGeneratedAt,
		RegenerationCount: stored.RegenerationCount,
	}, nil
}

func collectCourseIDs(stored models.LearningPath) []uint {
	seen := make(map[uint]struct{})
	ids := make([]uint, 0)
	for _, rec := range stored.RecommendedCourses {
		if _, ok := seen[rec.CourseID]; !ok {
			seen[rec.CourseID] = struct{}{}
			ids = append(ids, rec.CourseID)
		}
	}
	for _, phase := range stored.Phases {
		for _, step := range phase.Courses {
			if step.CourseID == nil {
				continue
			}
			if _, ok := seen[*step.CourseID]; !ok {
				seen[*step.CourseID] = struct{}{}
				ids = append(ids, *step.CourseID)
			}
		}
	}
	return ids
}

func toCourseSnapshot(course models.Course) dto.CourseSnapshot {
	return dto.CourseSnapshot{
		ID:           course.ID,
		Title:        course.Title,
		Subtitle:     course.Subtitle,
		ThumbnailURL: course.ThumbnailURL,
		Level:        course.Level,
		Duration:     course.Duration,
		Price:        course.Price,
		Rating:       course.Rating,
		RatingCount:  course.RatingCount,
		Categories:   append([]string(nil), course.Categories...),
	}
}

func (s *learningPathService) cacheKey(studentID uint) string {
	return "learning_path:v1:" + strconv.FormatUint(uint64(studentID), 10)
}

func (s *learningPathService) fetchCache(ctx context.Context, studentID uint) (dto.LearningPathResponse, bool) {
	if s.cache == nil {
		return dto.LearningPathResponse{}, false
	}
	payload, err := s.cache.Get(ctx, s.cacheKey(studentID)).Result()
	if err != nil {
		return dto.LearningPathResponse{}, false
	}

	var response dto.LearningPathResponse
	if err := json.Unmarshal([]byte(payload), &response); err != nil {
		s.logger.Warn().Err(err).Msg("failed to decode learning path cache")
		return dto.LearningPathResponse{}, false
	}
	return response, true
}

func (s *learningPathService) writeCache(ctx context.Context, studentID uint, response dto.LearningPathResponse) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(response)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode learning path cache")
		return
	}
	if err := s.cache.Set(ctx, s.cacheKey(studentID), payload, s.ttl).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to store learning path cache")
	}
}

func (s *learningPathService) invalidateCache(ctx context.Context, studentID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, s.cacheKey(studentID)).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate learning path cache")
	}
}
