package service

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"gorm.io/datatypes"

	"github.com/learnora/learnora-api/internal/dto"
	"github.com/learnora/learnora-api/internal/models"
)

// ErrInvalidCustomPath marks a submitted plan whose structure survived
// decoding but failed semantic validation.
var ErrInvalidCustomPath = errors.New("invalid custom path payload")

// buildCustomPath normalizes a caller-submitted plan into the stored
// aggregate. It trusts the caller's structure: no filtering, scoring or AI.
// Unparseable course references are nulled with a warning instead of
// rejecting the submission; missing titles are rejected.
func (s *learningPathService) buildCustomPath(studentID uint, payload dto.CustomPathPayload) (models.LearningPath, []string, error) {
	warnings := make([]string, 0)

	orderedPhases := make([]dto.CustomPhasePayload, len(payload.Phases))
	copy(orderedPhases, payload.Phases)
	sort.SliceStable(orderedPhases, func(i, j int) bool {
		return orderedPhases[i].Order < orderedPhases[j].Order
	})

	seen := make(map[uint]struct{})
	recommendations := make([]models.PathRecommendation, 0)
	phases := make([]models.PathPhase, 0, len(orderedPhases))

	for i, phaseIn := range orderedPhases {
		title := truncateText(s.sanitizer.Sanitize(phaseIn.Title), 255)
		if title == "" {
			return models.LearningPath{}, nil, fmt.Errorf("%w: phase %d title is required", ErrInvalidCustomPath, i+1)
		}

		orderedSteps := make([]dto.CustomStepPayload, len(phaseIn.Steps))
		copy(orderedSteps, phaseIn.Steps)
		sort.SliceStable(orderedSteps, func(a, b int) bool {
			return orderedSteps[a].Order < orderedSteps[b].Order
		})

		steps := make([]models.PathStep, 0, len(orderedSteps))
		for j, stepIn := range orderedSteps {
			stepTitle := truncateText(s.sanitizer.Sanitize(stepIn.Title), 255)
			if stepTitle == "" {
				return models.LearningPath{}, nil, fmt.Errorf("%w: phase %d step %d title is required", ErrInvalidCustomPath, i+1, j+1)
			}

			courseID, ok := parseCourseRef(stepIn.CourseID)
			if !ok {
				warnings = append(warnings, fmt.Sprintf("phase %d step %d: course id %v is not a valid id, reference removed", i+1, j+1, stepIn.CourseID))
			}

			steps = append(steps, models.PathStep{
				CourseID:    courseID,
				Title:       stepTitle,
				Description: strings.TrimSpace(s.sanitizer.Sanitize(stepIn.Description)),
				Order:       j + 1,
			})

			if courseID != nil {
				if _, dup := seen[*courseID]; !dup {
					seen[*courseID] = struct{}{}
					recommendations = append(recommendations, models.PathRecommendation{
						CourseID: *courseID,
						Priority: len(recommendations) + 1,
					})
				}
			}
		}

		phase := models.PathPhase{
			Title:          title,
			Description:    strings.TrimSpace(s.sanitizer.Sanitize(phaseIn.Description)),
			PhaseRationale: strings.TrimSpace(s.sanitizer.Sanitize(phaseIn.PhaseRationale)),
			Order:          i + 1,
			Courses:        steps,
		}
		applyPhaseSchedule(&phase, 1)
		phases = append(phases, phase)
	}

	goal := truncateText(s.sanitizer.Sanitize(payload.LearningGoal), 512)
	title := truncateText(s.sanitizer.Sanitize(payload.PathTitle), 255)
	if title == "" {
		if goal != "" {
			title = "Lộ trình học tập: " + goal
		} else {
			title = "Lộ trình học tập cá nhân"
		}
	}

	path := models.LearningPath{
		StudentID:          studentID,
		PathTitle:          title,
		LearningGoal:       goal,
		Source:             models.PathSourceCustom,
		Phases:             phases,
		RecommendedCourses: recommendations,
		Summary: datatypes.NewJSONType(models.PathSummary{
			TotalCourses:     len(recommendations),
			TotalPhases:      len(phases),
			SkillsCovered:    []string{},
			LevelProgression: "Tùy chỉnh",
		}),
	}

	return path, warnings, nil
}

// parseCourseRef reads a caller-supplied course reference. Absent references
// are fine; present but unparseable ones report !ok so the caller can warn.
func parseCourseRef(value interface{}) (*uint, bool) {
	switch v := value.(type) {
	case nil:
		return nil, true
	case float64:
		if v > 0 && v == math.Trunc(v) {
			id := uint(v)
			return &id, true
		}
		return nil, false
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil, true
		}
		parsed, err := strconv.ParseUint(trimmed, 10, 64)
		if err != nil || parsed == 0 {
			return nil, false
		}
		id := uint(parsed)
		return &id, true
	default:
		return nil, false
	}
}
