package models

import (
	"time"

	"gorm.io/datatypes"
)

// Learning path sources.
const (
	PathSourceGenerated = "generated"
	PathSourceCustom    = "custom"
)

// PathStep is one course entry inside a phase. CourseID is nullable because
// custom-submitted steps may reference an unparseable course id; the step
// text survives while the reference is dropped. Title/Description are only
// populated for custom steps; generated entries take display fields from
// catalog hydration.
type PathStep struct {
	CourseID       *uint   `json:"course_id"`
	Title          string  `json:"title,omitempty"`
	Description    string  `json:"description,omitempty"`
	Reason         string  `json:"reason"`
	Order          int     `json:"order"`
	MatchScore     int     `json:"match_score"`
	EstimatedHours float64 `json:"estimated_hours"`
}

// PathPhase is one time-boxed stage of a learning path.
type PathPhase struct {
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	PhaseRationale string     `json:"phase_rationale"`
	Order          int        `json:"order"`
	EstimatedWeeks int        `json:"estimated_weeks"`
	EstimatedDays  int        `json:"estimated_days"`
	EstimatedTime  string     `json:"estimated_time"`
	TotalHours     float64    `json:"total_hours"`
	Courses        []PathStep `json:"courses"`
}

// PathRecommendation is one entry of the flat, priority-ordered course list.
type PathRecommendation struct {
	CourseID       uint    `json:"course_id"`
	Reason         string  `json:"reason"`
	Priority       int     `json:"priority"`
	MatchScore     int     `json:"match_score"`
	EstimatedHours float64 `json:"estimated_hours"`
}

// PathSummary aggregates headline numbers for a stored path.
type PathSummary struct {
	TotalCourses        int      `json:"total_courses"`
	TotalEstimatedHours float64  `json:"total_estimated_hours"`
	TotalPhases         int      `json:"total_phases"`
	SkillsCovered       []string `json:"skills_covered"`
	LevelProgression    string   `json:"level_progression"`
}

// LearningPath is the single stored plan per student. Regeneration overwrites
// the whole row; RegenerationCount only ever grows.
type LearningPath struct {
	ID                 uint                                    `gorm:"primaryKey" json:"id"`
	StudentID          uint                                    `gorm:"uniqueIndex;not null" json:"student_id"`
	PathTitle          string                                  `gorm:"size:255;not null" json:"path_title"`
	LearningGoal       string                                  `gorm:"size:512" json:"learning_goal"`
	Source             string                                  `gorm:"size:16;default:generated" json:"source"`
	Phases             datatypes.JSONSlice[PathPhase]          `gorm:"type:json" json:"phases"`
	RecommendedCourses datatypes.JSONSlice[PathRecommendation] `gorm:"type:json" json:"recommended_courses"`
	Summary            datatypes.JSONType[PathSummary]         `gorm:"type:json" json:"summary"`
	LastGeneratedAt    time.Time                               `json:"last_generated_at"`
	RegenerationCount  int                                     `gorm:"default:0" json:"regeneration_count"`
	CreatedAt          time.Time                               `json:"created_at"`
	UpdatedAt          time.Time                               `json:"updated_at"`
}
