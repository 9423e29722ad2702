package dto

import "time"

// GenerateLearningPathRequest triggers path generation. When CustomPath is
// set the engine skips filtering/scoring/narration and ingests the submitted
// plan as-is.
type GenerateLearningPathRequest struct {
	CustomPath *CustomPathPayload `json:"custom_path" validate:"omitempty"`
}

// CustomPathPayload is a caller-built plan submitted instead of a generated
// one.
type CustomPathPayload struct {
	PathTitle    string               `json:"path_title" validate:"omitempty,max=255"`
	LearningGoal string               `json:"learning_goal" validate:"omitempty,max=512"`
	Phases       []CustomPhasePayload `json:"phases" validate:"required,min=1,dive"`
}

// CustomPhasePayload is one phase of a submitted plan.
type CustomPhasePayload struct {
	Title          string              `json:"title" validate:"required,min=1,max=255"`
	Description    string              `json:"description" validate:"omitempty,max=1000"`
	PhaseRationale string              `json:"phase_rationale" validate:"omitempty,max=1000"`
	Order          int                 `json:"order"`
	Steps          []CustomStepPayload `json:"steps" validate:"omitempty,dive"`
}

// CustomStepPayload is one step of a submitted phase. CourseID is untyped on
// purpose: an unparseable id must not reject the whole submission, so the
// service nulls it with a warning instead of the decoder failing here.
type CustomStepPayload struct {
	Title       string      `json:"title" validate:"required,min=1,max=255"`
	Description string      `json:"description" validate:"omitempty,max=1000"`
	CourseID    interface{} `json:"course_id"`
	Order       int         `json:"order"`
}

// CourseSnapshot is the hydrated display view of a referenced course.
type CourseSnapshot struct {
	ID           uint     `json:"id"`
	Title        string   `json:"title"`
	Subtitle     string   `json:"subtitle,omitempty"`
	ThumbnailURL string   `json:"thumbnail_url,omitempty"`
	Level        string   `json:"level"`
	Duration     string   `json:"duration,omitempty"`
	Price        float64  `json:"price"`
	Rating       float64  `json:"rating"`
	RatingCount  int      `json:"rating_count"`
	Categories   []string `json:"categories"`
}

// PathStepResponse is one course entry inside a hydrated phase.
type PathStepResponse struct {
	CourseID       *uint           `json:"course_id"`
	Course         *CourseSnapshot `json:"course,omitempty"`
	Title          string          `json:"title,omitempty"`
	Description    string          `json:"description,omitempty"`
	Reason         string          `json:"reason"`
	Order          int             `json:"order"`
	MatchScore     int             `json:"match_score"`
	EstimatedHours float64         `json:"estimated_hours"`
}

// PathPhaseResponse is one hydrated phase of a learning path.
type PathPhaseResponse struct {
	Title          string             `json:"title"`
	Description    string             `json:"description"`
	PhaseRationale string             `json:"phase_rationale"`
	Order          int                `json:"order"`
	EstimatedWeeks int                `json:"estimated_weeks"`
	EstimatedDays  int                `json:"estimated_days"`
	EstimatedTime  string             `json:"estimated_time"`
	TotalHours     float64            `json:"total_hours"`
	Courses        []PathStepResponse `json:"courses"`
}

// RecommendationResponse is one hydrated entry of the flat recommendation
// list. Entries whose course no longer resolves are dropped from responses.
type RecommendationResponse struct {
	Course         CourseSnapshot `json:"course"`
	Reason         string         `json:"reason"`
	Priority       int            `json:"priority"`
	MatchScore     int            `json:"match_score"`
	EstimatedHours float64        `json:"estimated_hours"`
}

// PathSummaryResponse aggregates headline numbers for a path.
type PathSummaryResponse struct {
	TotalCourses        int      `json:"total_courses"`
	TotalEstimatedHours float64  `json:"total_estimated_hours"`
	TotalPhases         int      `json:"total_phases"`
	SkillsCovered       []string `json:"skills_covered"`
	LevelProgression    string   `json:"level_progression"`
}

// LearningPathResponse is the hydrated view of a stored learning path.
type LearningPathResponse struct {
	PathTitle          string                   `json:"path_title"`
	LearningGoal       string                   `json:"learning_goal"`
	Source             string                   `json:"source"`
	Phases             []PathPhaseResponse      `json:"phases"`
	RecommendedCourses []RecommendationResponse `json:"recommended_courses"`
	PathSummary        PathSummaryResponse      `json:"path_summary"`
	LastGeneratedAt    time.Time                `json:"last_generated_at"`
	RegenerationCount  int                      `json:"regeneration_count"`
	Warnings           []string                 `json:"warnings,omitempty"`
}
