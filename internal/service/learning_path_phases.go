package service

import (
	"fmt"
	"math"
	"sort"

	"github.com/learnora/learnora-api/internal/models"
)

// phaseCount decides how many phases a plan gets for a timeline, bounded by
// half the selection count so short plans are not fragmented.
func phaseCount(timeline string, selected int) int {
	if selected == 0 {
		return 0
	}
	half := (selected + 1) / 2

	switch models.NormalizeTimeline(timeline) {
	case models.TimelineOneMonth:
		return min(2, selected)
	case models.TimelineSixMonths:
		return min(4, half)
	case models.TimelineOneYearPlus:
		return min(5, half)
	default:
		return min(3, half)
	}
}

// paceHoursPerWeek converts a weekly-study bucket into the midpoint hours
// used for phase duration estimates.
func paceHoursPerWeek(pace string) float64 {
	switch models.NormalizePace(pace) {
	case models.PaceLight:
		return 2
	case models.PaceSerious:
		return 11.5
	case models.PaceIntense:
		return 20
	default:
		return 5.5
	}
}

// planPhases partitions the selected courses into ordered, time-boxed phases
// of progressive difficulty: the global sort by level rank (score as
// tiebreak) makes early phases beginner-leaning and the last phase carry the
// hardest material. Titles and rationales stay empty for the narrator.
func planPhases(selected []scoredCandidate, pace, timeline string) []models.PathPhase {
	count := phaseCount(timeline, len(selected))
	if count == 0 {
		return []models.PathPhase{}
	}

	sorted := make([]scoredCandidate, len(selected))
	copy(sorted, selected)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, rj := levelRank(sorted[i].course.Level), levelRank(sorted[j].course.Level)
		if ri != rj {
			return ri < rj
		}
		return sorted[i].score > sorted[j].score
	})

	hoursPerWeek := paceHoursPerWeek(pace)
	base := len(sorted) / count
	extra := len(sorted) % count

	phases := make([]models.PathPhase, 0, count)
	cursor := 0
	for i := 0; i < count; i++ {
		size := base
		if i < extra {
			size++
		}
		members := sorted[cursor : cursor+size]
		cursor += size
		phases = append(phases, buildPhase(i+1, members, hoursPerWeek))
	}
	return phases
}

func buildPhase(order int, members []scoredCandidate, hoursPerWeek float64) models.PathPhase {
	steps := make([]models.PathStep, 0, len(members))
	totalHours := 0.0
	for i, member := range members {
		id := member.course.ID
		steps = append(steps, models.PathStep{
			CourseID:       &id,
			Reason:         member.reason,
			Order:          i + 1,
			MatchScore:     member.score,
			EstimatedHours: member.hours,
		})
		totalHours += member.hours
	}
	totalHours = math.Round(totalHours*100) / 100

	phase := models.PathPhase{
		Description: fmt.Sprintf("%d khóa học ở cấp độ %s", len(members), phaseLevelSummary(members)),
		Order:       order,
		TotalHours:  totalHours,
		Courses:     steps,
	}
	applyPhaseSchedule(&phase, int(math.Ceil(totalHours/hoursPerWeek)))
	return phase
}

// applyPhaseSchedule pins the week count (floored at one) and re-derives the
// day count and display duration from it.
func applyPhaseSchedule(phase *models.PathPhase, weeks int) {
	if weeks < 1 {
		weeks = 1
	}
	phase.EstimatedWeeks = weeks
	phase.EstimatedDays = weeks * 7
	phase.EstimatedTime = humanizeStudySpan(weeks)
}

// phaseLevelSummary describes the difficulty span of a phase's members.
func phaseLevelSummary(members []scoredCandidate) string {
	if len(members) == 0 {
		return levelLabel(models.LevelBeginner)
	}

	low, high := levelRank(members[0].course.Level), levelRank(members[0].course.Level)
	lowLevel, highLevel := members[0].course.Level, members[0].course.Level
	for _, member := range members[1:] {
		rank := levelRank(member.course.Level)
		if rank < low {
			low, lowLevel = rank, member.course.Level
		}
		if rank > high {
			high, highLevel = rank, member.course.Level
		}
	}

	if low == high {
		return levelLabel(lowLevel)
	}
	return levelLabel(lowLevel) + " đến " + levelLabel(highLevel)
}

// dominantPhaseLevel picks the most common difficulty in a phase, preferring
// the higher level on ties.
func dominantPhaseLevel(phase models.PathPhase, courses map[uint]models.Course) string {
	counts := map[string]int{}
	for _, step := range phase.Courses {
		if step.CourseID == nil {
			continue
		}
		if course, ok := courses[*step.CourseID]; ok {
			counts[models.NormalizeLevel(course.Level)]++
		}
	}

	best := ""
	bestCount := 0
	for level, count := range counts {
		if count > bestCount || (count == bestCount && levelRank(level) > levelRank(best)) {
			best, bestCount = level, count
		}
	}
	if best == "" {
		return models.LevelBeginner
	}
	return best
}
