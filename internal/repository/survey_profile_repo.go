package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/learnora/learnora-api/internal/models"
)

// SurveyProfileRepository persists learning-preference surveys.
type SurveyProfileRepository interface {
	GetByStudent(ctx context.Context, studentID uint) (models.SurveyProfile, error)
	Upsert(ctx context.Context, profile *models.SurveyProfile) error
}

type surveyProfileRepository struct {
	db *gorm.DB
}

// NewSurveyProfileRepository constructs the repository implementation.
func NewSurveyProfileRepository(db *gorm.DB) SurveyProfileRepository {
	return &surveyProfileRepository{db: db}
}

func (r *surveyProfileRepository) GetByStudent(ctx context.Context, studentID uint) (models.SurveyProfile, error) {
	var profile models.SurveyProfile
	err := r.db.WithContext(ctx).Where("student_id = ?", studentID).First(&profile).Error
	return profile, err
}

func (r *surveyProfileRepository) Upsert(ctx context.Context, profile *models.SurveyProfile) error {
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "student_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"learning_goal", "objectives", "interested_skills", "current_level",
			"weekly_study_hours", "target_completion_time", "survey_completed",
			"completed_at", "updated_at",
		}),
	})

	return tx.Create(profile).Error
}
