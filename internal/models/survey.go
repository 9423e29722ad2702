package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Weekly study pace buckets collected by the onboarding survey.
const (
	PaceLight    = "1-3"
	PaceModerate = "4-7"
	PaceSerious  = "8-15"
	PaceIntense  = "15+"
)

// Target completion timeline buckets.
const (
	TimelineOneMonth    = "1-month"
	TimelineThreeMonths = "3-months"
	TimelineSixMonths   = "6-months"
	TimelineOneYearPlus = "1-year+"
)

// SurveyProfile stores the learning preferences a student declared in the
// onboarding survey. One row per student; rewritten wholesale whenever the
// survey is resubmitted.
type SurveyProfile struct {
	ID                   uint                        `gorm:"primaryKey" json:"id"`
	StudentID            uint                        `gorm:"uniqueIndex;not null" json:"student_id"`
	LearningGoal         string                      `gorm:"size:512;not null" json:"learning_goal"`
	Objectives           datatypes.JSONSlice[string] `gorm:"type:json" json:"objectives"`
	SkillsRaw            string                      `gorm:"column:interested_skills;type:text" json:"-"`
	CurrentLevel         string                      `gorm:"size:32;not null" json:"current_level"`
	WeeklyStudyHours     string                      `gorm:"size:16;not null" json:"weekly_study_hours"`
	TargetCompletionTime string                      `gorm:"size:16;not null" json:"target_completion_time"`
	SurveyCompleted      bool                        `gorm:"default:false" json:"survey_completed"`
	CompletedAt          *time.Time                  `json:"completed_at"`
	CreatedAt            time.Time                   `json:"created_at"`
	UpdatedAt            time.Time                   `json:"updated_at"`
	InterestedSkills     []string                    `gorm:"-" json:"interested_skills"`
}

// BeforeSave normalises enum fields and encodes the skill tags.
func (p *SurveyProfile) BeforeSave(tx *gorm.DB) error {
	p.CurrentLevel = NormalizeLevel(p.CurrentLevel)
	p.WeeklyStudyHours = NormalizePace(p.WeeklyStudyHours)
	p.TargetCompletionTime = NormalizeTimeline(p.TargetCompletionTime)
	p.SkillsRaw = encodeTags(p.InterestedSkills)
	return nil
}

// AfterFind hydrates the skill list after loading from DB.
func (p *SurveyProfile) AfterFind(tx *gorm.DB) error {
	p.InterestedSkills = decodeTags(p.SkillsRaw)
	return nil
}

// NormalizePace maps free-form pace input onto a known bucket, defaulting to
// the moderate band.
func NormalizePace(pace string) string {
	switch strings.TrimSpace(pace) {
	case PaceLight:
		return PaceLight
	case PaceSerious:
		return PaceSerious
	case PaceIntense, "15+h", "15":
		return PaceIntense
	default:
		return PaceModerate
	}
}

// NormalizeTimeline maps free-form timeline input onto a known bucket,
// defaulting to three months.
func NormalizeTimeline(timeline string) string {
	switch strings.ToLower(strings.TrimSpace(timeline)) {
	case TimelineOneMonth:
		return TimelineOneMonth
	case TimelineSixMonths:
		return TimelineSixMonths
	case TimelineOneYearPlus, "1-year", "1year+":
		return TimelineOneYearPlus
	default:
		return TimelineThreeMonths
	}
}
