package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/learnora/learnora-api/internal/models"
	"github.com/learnora/learnora-api/internal/observability"
	"github.com/learnora/learnora-api/pkg/ai"
)

// maxReasonLength caps learner-facing course rationales.
const maxReasonLength = 100

const rationaleInstructions = "Bạn là cố vấn học tập của một nền tảng khóa học trực tuyến. " +
	"Trả lời bằng JSON object dạng {\"items\": [...]} với đúng một phần tử cho mỗi khóa học, theo thứ tự đã cho. " +
	"Mỗi phần tử có dạng {\"reason\": string}: lý do bằng tiếng Việt, tối đa 100 ký tự, " +
	"giải thích vì sao khóa học phù hợp với học viên."

const phaseInstructions = "Bạn là cố vấn học tập của một nền tảng khóa học trực tuyến. " +
	"Trả lời bằng JSON object dạng {\"items\": [...]} với đúng một phần tử cho mỗi giai đoạn, theo thứ tự đã cho. " +
	"Mỗi phần tử có dạng {\"title\": string, \"rationale\": string, \"estimated_weeks\": number}: " +
	"tiêu đề ngắn gọn bằng tiếng Việt, lý do vì sao giai đoạn này nên học ở vị trí đó, " +
	"và số tuần ước tính nếu bạn thấy cần điều chỉnh."

// annotateReasons fills each selected candidate's learner-facing reason,
// via the generative collaborator when available and the deterministic
// template otherwise. It reports whether the AI path succeeded.
func (s *learningPathService) annotateReasons(ctx context.Context, profile models.SurveyProfile, selected []scoredCandidate) bool {
	if len(selected) == 0 {
		return false
	}

	if s.generator == nil {
		s.applyFallbackReasons(profile, selected)
		return false
	}

	items, err := s.generator.GenerateArray(ctx, ai.GenerationRequest{
		Instructions: rationaleInstructions,
		Prompt:       buildRationalePrompt(profile, selected),
		ItemCount:    len(selected),
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("course rationale generation failed, using fallback")
		observability.PathFallbacks().WithLabelValues("rationale").Inc()
		s.applyFallbackReasons(profile, selected)
		return false
	}

	for i := range selected {
		var payload struct {
			Reason string `json:"reason"`
		}
		reason := ""
		if err := json.Unmarshal(items[i], &payload); err == nil {
			reason = truncateText(s.sanitizer.Sanitize(payload.Reason), maxReasonLength)
		}
		if reason == "" {
			reason = fallbackReason(profile, selected[i].course)
		}
		selected[i].reason = reason
	}
	return true
}

func (s *learningPathService) applyFallbackReasons(profile models.SurveyProfile, selected []scoredCandidate) {
	for i := range selected {
		selected[i].reason = fallbackReason(profile, selected[i].course)
	}
}

// fallbackReason renders the deterministic per-course justification.
func fallbackReason(profile models.SurveyProfile, course models.Course) string {
	label := levelLabel(profile.CurrentLevel)
	categories := strings.Join(course.Categories, ", ")
	if categories == "" {
		return truncateText(fmt.Sprintf("Phù hợp với cấp độ %s", label), maxReasonLength)
	}
	return truncateText(fmt.Sprintf("Phù hợp với cấp độ %s & kỹ năng %s", label, categories), maxReasonLength)
}

func buildRationalePrompt(profile models.SurveyProfile, selected []scoredCandidate) string {
	builder := strings.Builder{}
	builder.WriteString("## Học viên\n")
	fmt.Fprintf(&builder, "- Mục tiêu: %s\n", profile.LearningGoal)
	if len(profile.Objectives) > 0 {
		fmt.Fprintf(&builder, "- Mục tiêu cụ thể: %s\n", strings.Join(profile.Objectives, "; "))
	}
	fmt.Fprintf(&builder, "- Cấp độ hiện tại: %s\n", levelLabel(profile.CurrentLevel))
	if len(profile.InterestedSkills) > 0 {
		fmt.Fprintf(&builder, "- Kỹ năng quan tâm: %s\n", strings.Join(profile.InterestedSkills, ", "))
	}
	fmt.Fprintf(&builder, "- Thời gian học mỗi tuần: %s giờ\n", profile.WeeklyStudyHours)
	fmt.Fprintf(&builder, "- Thời hạn hoàn thành: %s\n", timelineLabel(profile.TargetCompletionTime))

	builder.WriteString("\n## Khóa học\n")
	for i, candidate := range selected {
		fmt.Fprintf(&builder, "%d. %s (cấp độ %s, chủ đề: %s, điểm phù hợp %d)\n",
			i+1,
			candidate.course.Title,
			levelLabel(candidate.course.Level),
			strings.Join(candidate.course.Categories, ", "),
			candidate.score,
		)
	}
	builder.WriteString("\nTrả về JSON.")
	return builder.String()
}

type phaseNarrationItem struct {
	Title          string `json:"title"`
	Rationale      string `json:"rationale"`
	EstimatedWeeks int    `json:"estimated_weeks"`
}

// narratePhases fills phase titles and rationales. An AI-supplied week count
// overrides the computed one; the day count and display duration are always
// re-derived from the final value. Reports whether the AI path succeeded.
func (s *learningPathService) narratePhases(ctx context.Context, profile models.SurveyProfile, phases []models.PathPhase, courses map[uint]models.Course) bool {
	if len(phases) == 0 {
		return false
	}

	if s.generator == nil {
		applyFallbackNarration(profile, phases, courses)
		return false
	}

	items, err := s.generator.GenerateArray(ctx, ai.GenerationRequest{
		Instructions: phaseInstructions,
		Prompt:       buildPhasePrompt(profile, phases, courses),
		ItemCount:    len(phases),
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("phase narration failed, using fallback")
		observability.PathFallbacks().WithLabelValues("phase").Inc()
		applyFallbackNarration(profile, phases, courses)
		return false
	}

	for i := range phases {
		var payload phaseNarrationItem
		if err := json.Unmarshal(items[i], &payload); err != nil {
			payload = phaseNarrationItem{}
		}

		title := truncateText(s.sanitizer.Sanitize(payload.Title), 255)
		if title == "" {
			title = fallbackPhaseTitle(phases[i].Order, dominantPhaseLevel(phases[i], courses))
		}
		phases[i].Title = title

		rationale := strings.TrimSpace(s.sanitizer.Sanitize(payload.Rationale))
		if rationale == "" {
			rationale = fallbackPhaseRationale(phases[i].Order, len(phases), profile)
		}
		phases[i].PhaseRationale = rationale

		if payload.EstimatedWeeks > 0 {
			applyPhaseSchedule(&phases[i], payload.EstimatedWeeks)
		}
	}
	return true
}

func applyFallbackNarration(profile models.SurveyProfile, phases []models.PathPhase, courses map[uint]models.Course) {
	for i := range phases {
		phases[i].Title = fallbackPhaseTitle(phases[i].Order, dominantPhaseLevel(phases[i], courses))
		phases[i].PhaseRationale = fallbackPhaseRationale(phases[i].Order, len(phases), profile)
	}
}

// fallbackPhaseTitle renders the deterministic phase heading.
func fallbackPhaseTitle(order int, level string) string {
	return fmt.Sprintf("Giai Đoạn %d: %s", order, levelLabel(level))
}

// fallbackPhaseRationale branches on phase position so openings, middles and
// finales read differently while staying grounded in the survey.
func fallbackPhaseRationale(position, total int, profile models.SurveyProfile) string {
	goal := strings.TrimSpace(profile.LearningGoal)
	timeline := timelineLabel(profile.TargetCompletionTime)
	level := levelLabel(profile.CurrentLevel)

	switch {
	case position <= 1:
		return fmt.Sprintf("Bắt đầu với những khóa học nền tảng phù hợp cấp độ %s, xây nền kiến thức vững chắc cho mục tiêu \"%s\".", level, goal)
	case position >= total:
		return fmt.Sprintf("Hoàn thiện lộ trình bằng các khóa học thử thách nhất, giúp bạn chinh phục mục tiêu \"%s\" trong %s.", goal, timeline)
	default:
		return fmt.Sprintf("Tiếp tục nâng cao kỹ năng qua các khóa học chuyên sâu hơn, bám sát mục tiêu \"%s\" trong khung thời gian %s.", goal, timeline)
	}
}

func buildPhasePrompt(profile models.SurveyProfile, phases []models.PathPhase, courses map[uint]models.Course) string {
	builder := strings.Builder{}
	builder.WriteString("## Học viên\n")
	fmt.Fprintf(&builder, "- Mục tiêu: %s\n", profile.LearningGoal)
	fmt.Fprintf(&builder, "- Cấp độ hiện tại: %s\n", levelLabel(profile.CurrentLevel))
	fmt.Fprintf(&builder, "- Thời hạn hoàn thành: %s\n", timelineLabel(profile.TargetCompletionTime))

	builder.WriteString("\n## Giai đoạn\n")
	for _, phase := range phases {
		titles := make([]string, 0, len(phase.Courses))
		for _, step := range phase.Courses {
			if step.CourseID == nil {
				continue
			}
			if course, ok := courses[*step.CourseID]; ok {
				titles = append(titles, course.Title)
			}
		}
		fmt.Fprintf(&builder, "%d. %s (tổng %.1f giờ, dự kiến %d tuần)\n",
			phase.Order, strings.Join(titles, "; "), phase.TotalHours, phase.EstimatedWeeks)
	}
	builder.WriteString("\nTrả về JSON.")
	return builder.String()
}
