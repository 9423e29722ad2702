package service

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/learnora/learnora-api/internal/models"
)

// defaultCourseHours stands in when a catalog duration string cannot be
// parsed.
const defaultCourseHours = 5.0

var durationToken = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(hours?|hrs?|h|giờ|minutes?|mins?|m|phút)`)

// parseContentHours converts a free-form catalog duration ("12h 30m",
// "8 hours", "90 phút", "6.5") into hours.
func parseContentHours(duration string) float64 {
	trimmed := strings.TrimSpace(duration)
	if trimmed == "" {
		return defaultCourseHours
	}

	matches := durationToken.FindAllStringSubmatch(trimmed, -1)
	if len(matches) == 0 {
		if value, err := strconv.ParseFloat(strings.ReplaceAll(trimmed, ",", "."), 64); err == nil && value > 0 {
			return value
		}
		return defaultCourseHours
	}

	total := 0.0
	for _, match := range matches {
		value, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", "."), 64)
		if err != nil {
			continue
		}
		unit := strings.ToLower(match[2])
		if strings.HasPrefix(unit, "m") || unit == "phút" {
			total += value / 60
		} else {
			total += value
		}
	}

	if total <= 0 {
		return defaultCourseHours
	}
	return math.Round(total*100) / 100
}

// levelRank orders difficulty levels for progressive phase building.
func levelRank(level string) int {
	switch models.NormalizeLevel(level) {
	case models.LevelIntermediate:
		return 1
	case models.LevelAdvanced:
		return 2
	case models.LevelExpert:
		return 3
	default:
		return 0
	}
}

// levelLabel renders a difficulty level for learner-facing text.
func levelLabel(level string) string {
	switch models.NormalizeLevel(level) {
	case models.LevelIntermediate:
		return "Trung Cấp"
	case models.LevelAdvanced:
		return "Nâng Cao"
	case models.LevelExpert:
		return "Chuyên Gia"
	default:
		return "Cơ Bản"
	}
}

// timelineLabel renders a completion-timeline bucket for learner-facing text.
func timelineLabel(timeline string) string {
	switch models.NormalizeTimeline(timeline) {
	case models.TimelineOneMonth:
		return "1 tháng"
	case models.TimelineSixMonths:
		return "6 tháng"
	case models.TimelineOneYearPlus:
		return "hơn 1 năm"
	default:
		return "3 tháng"
	}
}

// humanizeStudySpan renders a week count as learner-facing text: days under a
// week, weeks under a month, months beyond.
func humanizeStudySpan(weeks int) string {
	days := weeks * 7
	if days < 7 {
		return fmt.Sprintf("%d ngày", days)
	}
	if weeks < 4 {
		return fmt.Sprintf("%d tuần", weeks)
	}
	months := int(math.Round(float64(weeks) / 4))
	if months < 1 {
		months = 1
	}
	return fmt.Sprintf("%d tháng", months)
}

// truncateText caps learner-facing text at limit characters, rune-safe.
func truncateText(text string, limit int) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) <= limit {
		return string(runes)
	}
	return strings.TrimSpace(string(runes[:limit]))
}
