package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/learnora/learnora-api/internal/models"
)

// LearningPathRepository persists the per-student learning path aggregate.
type LearningPathRepository interface {
	GetByStudent(ctx context.Context, studentID uint) (models.LearningPath, error)
	// Replace overwrites the student's stored path in a single upsert and
	// bumps regeneration_count server-side. It returns the persisted row so
	// callers see the authoritative count and timestamps.
	Replace(ctx context.Context, path *models.LearningPath) (models.LearningPath, error)
}

type learningPathRepository struct {
	db *gorm.DB
}

// NewLearningPathRepository constructs the repository implementation.
func NewLearningPathRepository(db *gorm.DB) LearningPathRepository {
	return &learningPathRepository{db: db}
}

func (r *learningPathRepository) GetByStudent(ctx context.Context, studentID uint) (models.LearningPath, error) {
	var path models.LearningPath
	err := r.db.WithContext(ctx).Where("student_id = ?", studentID).First(&path).Error
	return path, err
}

func (r *learningPathRepository) Replace(ctx context.Context, path *models.LearningPath) (models.LearningPath, error) {
	if path.RegenerationCount <= 0 {
		path.RegenerationCount = 1
	}

	// The unqualified column in the conflict assignment reads the existing
	// row, so concurrent regenerations can only grow the counter.
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "student_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"path_title":          path.PathTitle,
			"learning_goal":       path.LearningGoal,
			"source":              path.Source,
			"phases":              path.Phases,
			"recommended_courses": path.RecommendedCourses,
			"summary":             path.Summary,
			"last_generated_at":   path.LastGeneratedAt,
			"regeneration_count":  gorm.Expr("regeneration_count + 1"),
			"updated_at":          path.LastGeneratedAt,
		}),
	})

	if err := tx.Create(path).Error; err != nil {
		return models.LearningPath{}, err
	}

	var stored models.LearningPath
	if err := r.db.WithContext(ctx).Where("student_id = ?", path.StudentID).First(&stored).Error; err != nil {
		return models.LearningPath{}, err
	}
	return stored, nil
}
