package service

import (
	"math"
	"sort"
	"strings"

	"github.com/learnora/learnora-api/internal/models"
)

// courseCandidate is the scoring-ready projection of one catalog course.
// It only lives for the duration of a single generation run.
type courseCandidate struct {
	course models.Course
	hours  float64
}

// scoredCandidate is a candidate annotated with its fit score and, after
// rationale generation, the learner-facing reason.
type scoredCandidate struct {
	courseCandidate
	score  int
	reason string
}

// allowedCourseLevels implements the level-adjacency policy: learners see
// their own level plus the neighbouring one they can grow from. Experts only
// get advanced material, beginners only beginner material.
func allowedCourseLevels(studentLevel string) []string {
	switch models.NormalizeLevel(studentLevel) {
	case models.LevelIntermediate:
		return []string{models.LevelBeginner, models.LevelIntermediate}
	case models.LevelAdvanced:
		return []string{models.LevelIntermediate, models.LevelAdvanced}
	case models.LevelExpert:
		return []string{models.LevelAdvanced}
	default:
		return []string{models.LevelBeginner}
	}
}

// matchScore computes the 0-100 fit between a course and a profile. It is a
// pure function: level match 30 (partial credit for the adjacent pairs),
// category overlap up to 40, rating up to 20, description quality up to 10.
func matchScore(course models.Course, profile models.SurveyProfile) int {
	score := 0

	studentLevel := models.NormalizeLevel(profile.CurrentLevel)
	courseLevel := models.NormalizeLevel(course.Level)
	switch {
	case courseLevel == studentLevel:
		score += 30
	case studentLevel == models.LevelIntermediate && courseLevel == models.LevelBeginner:
		score += 20
	case studentLevel == models.LevelAdvanced && courseLevel == models.LevelIntermediate:
		score += 25
	}

	if declared := len(profile.InterestedSkills); declared > 0 {
		matching := categoryOverlap(course.Categories, profile.InterestedSkills)
		score += int(math.Round(float64(matching) / float64(declared) * 40))
	}

	score += int(math.Round(course.Rating / 5 * 20))

	if len(course.Description) > 100 {
		score += 5
	}
	if len(course.WillLearn) > 0 {
		score += 5
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

func categoryOverlap(courseCategories, interestedSkills []string) int {
	if len(courseCategories) == 0 {
		return 0
	}
	tagged := make(map[string]struct{}, len(courseCategories))
	for _, category := range courseCategories {
		tagged[strings.ToLower(strings.TrimSpace(category))] = struct{}{}
	}

	matching := 0
	for _, skill := range interestedSkills {
		if _, ok := tagged[strings.ToLower(strings.TrimSpace(skill))]; ok {
			matching++
		}
	}
	return matching
}

// timelineBudgets maps (targetCompletionTime, weeklyStudyHours) to the
// maximum number of courses a plan may contain.
var timelineBudgets = map[string]map[string]int{
	models.TimelineOneMonth: {
		models.PaceLight:    1,
		models.PaceModerate: 2,
		models.PaceSerious:  2,
		models.PaceIntense:  3,
	},
	models.TimelineThreeMonths: {
		models.PaceLight:    2,
		models.PaceModerate: 3,
		models.PaceSerious:  4,
		models.PaceIntense:  5,
	},
	models.TimelineSixMonths: {
		models.PaceLight:    3,
		models.PaceModerate: 5,
		models.PaceSerious:  6,
		models.PaceIntense:  8,
	},
	models.TimelineOneYearPlus: {
		models.PaceLight:    5,
		models.PaceModerate: 8,
		models.PaceSerious:  12,
		models.PaceIntense:  15,
	},
}

// courseBudget looks up the selection cap for a timeline/pace pair,
// defaulting to 5 on a miss.
func courseBudget(timeline, pace string) int {
	if row, ok := timelineBudgets[models.NormalizeTimeline(timeline)]; ok {
		if budget, ok := row[models.NormalizePace(pace)]; ok {
			return budget
		}
	}
	return 5
}

// selectTopCandidates sorts by descending score (stable, so the catalog's
// rating order breaks ties) and keeps at most budget entries.
func selectTopCandidates(candidates []scoredCandidate, budget int) []scoredCandidate {
	selected := make([]scoredCandidate, len(candidates))
	copy(selected, candidates)

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].score > selected[j].score
	})

	if budget < len(selected) {
		selected = selected[:budget]
	}
	return selected
}
