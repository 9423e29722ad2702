package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/learnora/learnora-api/internal/models"
)

// CourseFilter narrows the active-course projection used for path generation.
// Levels restricts to the given difficulty set; Categories keeps courses
// tagged with at least one of the given category slugs.
type CourseFilter struct {
	Levels     []string
	Categories []string
}

// CourseRepository exposes the catalog read contract consumed by the
// learning-path engine.
type CourseRepository interface {
	ListActive(ctx context.Context, filter CourseFilter) ([]models.Course, error)
	ListByIDs(ctx context.Context, ids []uint) ([]models.Course, error)
	EnrolledCourseIDs(ctx context.Context, studentID uint) ([]uint, error)
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository constructs the repository implementation.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) ListActive(ctx context.Context, filter CourseFilter) ([]models.Course, error) {
	query := r.db.WithContext(ctx).Model(&models.Course{}).Where("is_active = ?", true)

	if len(filter.Levels) > 0 {
		query = query.Where("level IN ?", filter.Levels)
	}

	if categories := cleanSlugs(filter.Categories); len(categories) > 0 {
		matcher := r.db.Where("categories LIKE ?", "%|"+categories[0]+"|%")
		for _, category := range categories[1:] {
			matcher = matcher.Or("categories LIKE ?", "%|"+category+"|%")
		}
		query = query.Where(matcher)
	}

	var courses []models.Course
	if err := query.Order("rating DESC, id ASC").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepository) ListByIDs(ctx context.Context, ids []uint) ([]models.Course, error) {
	if len(ids) == 0 {
		return []models.Course{}, nil
	}

	var courses []models.Course
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Where("is_active = ?", true).
		Find(&courses).Error
	if err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepository) EnrolledCourseIDs(ctx context.Context, studentID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("student_id = ?", studentID).
		Pluck("course_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func cleanSlugs(values []string) []string {
	cleaned := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.ToLower(strings.TrimSpace(value))
		if trimmed == "" {
			continue
		}
		cleaned = append(cleaned, trimmed)
	}
	return cleaned
}
