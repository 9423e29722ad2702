package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/learnora/learnora-api/internal/models"
)

func TestPhaseCount(t *testing.T) {
	require.Equal(t, 0, phaseCount("3-months", 0))
	require.Equal(t, 1, phaseCount("1-month", 1))
	require.Equal(t, 2, phaseCount("1-month", 5))
	require.Equal(t, 2, phaseCount("3-months", 3))
	require.Equal(t, 3, phaseCount("3-months", 8))
	require.Equal(t, 3, phaseCount("6-months", 6))
	require.Equal(t, 4, phaseCount("6-months", 10))
	require.Equal(t, 5, phaseCount("1-year+", 15))
	require.Equal(t, 2, phaseCount("1-year+", 4))
}

func TestPaceHoursPerWeek(t *testing.T) {
	require.Equal(t, 2.0, paceHoursPerWeek("1-3"))
	require.Equal(t, 5.5, paceHoursPerWeek("4-7"))
	require.Equal(t, 11.5, paceHoursPerWeek("8-15"))
	require.Equal(t, 20.0, paceHoursPerWeek("15+"))
	require.Equal(t, 5.5, paceHoursPerWeek("unknown"))
}

func candidateForPhase(id uint, level string, score int, hours float64) scoredCandidate {
	return scoredCandidate{
		courseCandidate: courseCandidate{
			course: models.Course{ID: id, Level: level},
			hours:  hours,
		},
		score: score,
	}
}

func TestPlanPhasesDistributesEveryCourseOnce(t *testing.T) {
	selected := []scoredCandidate{
		candidateForPhase(1, "intermediate", 80, 4),
		candidateForPhase(2, "beginner", 95, 6),
		candidateForPhase(3, "beginner", 60, 3),
		candidateForPhase(4, "advanced", 75, 8),
		candidateForPhase(5, "intermediate", 70, 5),
	}

	phases := planPhases(selected, "4-7", "6-months")
	require.Len(t, phases, 3)

	seen := map[uint]int{}
	for i, phase := range phases {
		require.Equal(t, i+1, phase.Order)
		require.NotEmpty(t, phase.Courses)
		require.NotEmpty(t, phase.Description)
		require.GreaterOrEqual(t, phase.EstimatedWeeks, 1)
		require.Equal(t, phase.EstimatedWeeks*7, phase.EstimatedDays)
		require.NotEmpty(t, phase.EstimatedTime)
		for j, step := range phase.Courses {
			require.Equal(t, j+1, step.Order)
			require.NotNil(t, step.CourseID)
			seen[*step.CourseID]++
		}
	}

	require.Len(t, seen, len(selected))
	for id, count := range seen {
		require.Equalf(t, 1, count, "course %d assigned to %d phases", id, count)
	}
}

func TestPlanPhasesOrdersByDifficulty(t *testing.T) {
	selected := []scoredCandidate{
		candidateForPhase(1, "advanced", 90, 4),
		candidateForPhase(2, "beginner", 50, 4),
		candidateForPhase(3, "intermediate", 70, 4),
		candidateForPhase(4, "beginner", 80, 4),
	}

	phases := planPhases(selected, "8-15", "6-months")
	require.Len(t, phases, 2)

	// 4 courses over 2 phases: first phase carries the easier material
	first, second := phases[0], phases[1]
	require.Equal(t, []uint{4, 2}, stepCourseIDs(first))
	require.Equal(t, []uint{3, 1}, stepCourseIDs(second))
}

func stepCourseIDs(phase models.PathPhase) []uint {
	ids := make([]uint, 0, len(phase.Courses))
	for _, step := range phase.Courses {
		if step.CourseID != nil {
			ids = append(ids, *step.CourseID)
		}
	}
	return ids
}

func TestPlanPhasesUnevenSplitFavorsEarlyPhases(t *testing.T) {
	selected := []scoredCandidate{
		candidateForPhase(1, "beginner", 90, 2),
		candidateForPhase(2, "beginner", 80, 2),
		candidateForPhase(3, "beginner", 70, 2),
		candidateForPhase(4, "beginner", 60, 2),
		candidateForPhase(5, "beginner", 50, 2),
	}

	phases := planPhases(selected, "1-3", "6-months")
	require.Len(t, phases, 3)
	require.Len(t, phases[0].Courses, 2)
	require.Len(t, phases[1].Courses, 2)
	require.Len(t, phases[2].Courses, 1)
}

func TestBuildPhaseScheduleFromHours(t *testing.T) {
	members := []scoredCandidate{
		candidateForPhase(1, "beginner", 90, 6),
		candidateForPhase(2, "beginner", 80, 5.5),
	}

	phase := buildPhase(1, members, 5.5)
	require.Equal(t, 11.5, phase.TotalHours)
	// ceil(11.5 / 5.5) = 3 weeks
	require.Equal(t, 3, phase.EstimatedWeeks)
	require.Equal(t, 21, phase.EstimatedDays)
	require.Equal(t, "3 tuần", phase.EstimatedTime)
	require.Equal(t, "2 khóa học ở cấp độ Cơ Bản", phase.Description)
}

func TestApplyPhaseScheduleFloorsAtOneWeek(t *testing.T) {
	phase := models.PathPhase{}
	applyPhaseSchedule(&phase, 0)
	require.Equal(t, 1, phase.EstimatedWeeks)
	require.Equal(t, 7, phase.EstimatedDays)
	require.Equal(t, "1 tuần", phase.EstimatedTime)
}

func TestPhaseLevelSummarySpansLevels(t *testing.T) {
	members := []scoredCandidate{
		candidateForPhase(1, "beginner", 0, 1),
		candidateForPhase(2, "advanced", 0, 1),
	}
	require.Equal(t, "Cơ Bản đến Nâng Cao", phaseLevelSummary(members))
	require.Equal(t, "Nâng Cao", phaseLevelSummary(members[1:]))
}

func TestDominantPhaseLevel(t *testing.T) {
	one, two, three := uint(1), uint(2), uint(3)
	phase := models.PathPhase{Courses: []models.PathStep{
		{CourseID: &one},
		{CourseID: &two},
		{CourseID: &three},
		{CourseID: nil},
	}}
	courses := map[uint]models.Course{
		1: {ID: 1, Level: "beginner"},
		2: {ID: 2, Level: "intermediate"},
		3: {ID: 3, Level: "intermediate"},
	}

	require.Equal(t, "intermediate", dominantPhaseLevel(phase, courses))

	// ties resolve to the higher level
	delete(courses, 3)
	require.Equal(t, "intermediate", dominantPhaseLevel(phase, courses))

	require.Equal(t, "beginner", dominantPhaseLevel(models.PathPhase{}, courses))
}
