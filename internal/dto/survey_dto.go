package dto

import "time"

// SurveySubmitRequest captures the onboarding survey payload.
type SurveySubmitRequest struct {
	LearningGoal         string   `json:"learning_goal" validate:"required,min=3,max=512"`
	Objectives           []string `json:"objectives" validate:"omitempty,dive,min=1,max=255"`
	InterestedSkills     []string `json:"interested_skills" validate:"omitempty,dive,min=1,max=64"`
	CurrentLevel         string   `json:"current_level" validate:"required,oneof=beginner intermediate advanced expert"`
	WeeklyStudyHours     string   `json:"weekly_study_hours" validate:"required,oneof=1-3 4-7 8-15 15+"`
	TargetCompletionTime string   `json:"target_completion_time" validate:"required,oneof=1-month 3-months 6-months 1-year+"`
}

// SurveyResponse serializes a stored survey profile.
type SurveyResponse struct {
	StudentID            uint       `json:"student_id"`
	LearningGoal         string     `json:"learning_goal"`
	Objectives           []string   `json:"objectives"`
	InterestedSkills     []string   `json:"interested_skills"`
	CurrentLevel         string     `json:"current_level"`
	WeeklyStudyHours     string     `json:"weekly_study_hours"`
	TargetCompletionTime string     `json:"target_completion_time"`
	SurveyCompleted      bool       `json:"survey_completed"`
	CompletedAt          *time.Time `json:"completed_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}
