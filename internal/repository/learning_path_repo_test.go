package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/learnora/learnora-api/internal/models"
)

func TestLearningPathRepositoryReplaceInsertsFreshRow(t *testing.T) {
	db := setupPathTestDB(t)
	repo := NewLearningPathRepository(db)

	stored, err := repo.Replace(context.Background(), samplePath(42, "Lộ trình học tập: Go"))
	require.NoError(t, err)

	require.Equal(t, uint(42), stored.StudentID)
	require.Equal(t, "Lộ trình học tập: Go", stored.PathTitle)
	require.Equal(t, 1, stored.RegenerationCount)
	require.Len(t, stored.Phases, 1)
	require.Len(t, stored.RecommendedCourses, 2)
	require.Equal(t, 2, stored.Summary.Data().TotalCourses)
}

func TestLearningPathRepositoryReplaceBumpsCountOnConflict(t *testing.T) {
	db := setupPathTestDB(t)
	repo := NewLearningPathRepository(db)

	_, err := repo.Replace(context.Background(), samplePath(42, "Phiên bản đầu"))
	require.NoError(t, err)

	replacement := samplePath(42, "Phiên bản mới")
	replacement.RecommendedCourses = []models.PathRecommendation{{CourseID: 9, Priority: 1}}
	stored, err := repo.Replace(context.Background(), replacement)
	require.NoError(t, err)

	require.Equal(t, "Phiên bản mới", stored.PathTitle)
	require.Equal(t, 2, stored.RegenerationCount)
	require.Len(t, stored.RecommendedCourses, 1)
	require.Equal(t, uint(9), stored.RecommendedCourses[0].CourseID)

	var count int64
	require.NoError(t, db.Model(&models.LearningPath{}).Where("student_id = ?", 42).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestLearningPathRepositoryReplaceKeepsStudentsApart(t *testing.T) {
	db := setupPathTestDB(t)
	repo := NewLearningPathRepository(db)

	_, err := repo.Replace(context.Background(), samplePath(42, "Của sinh viên 42"))
	require.NoError(t, err)
	_, err = repo.Replace(context.Background(), samplePath(7, "Của sinh viên 7"))
	require.NoError(t, err)

	stored, err := repo.GetByStudent(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, "Của sinh viên 7", stored.PathTitle)
	require.Equal(t, 1, stored.RegenerationCount)
}

func TestLearningPathRepositoryGetByStudentNotFound(t *testing.T) {
	db := setupPathTestDB(t)
	repo := NewLearningPathRepository(db)

	_, err := repo.GetByStudent(context.Background(), 42)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func samplePath(studentID uint, title string) *models.LearningPath {
	courseID := uint(1)
	return &models.LearningPath{
		StudentID:    studentID,
		PathTitle:    title,
		LearningGoal: "Trở thành backend developer",
		Source:       models.PathSourceGenerated,
		Phases: []models.PathPhase{{
			Title:          "Giai Đoạn 1: Cơ Bản",
			PhaseRationale: "Bắt đầu từ nền tảng.",
			Order:          1,
			EstimatedWeeks: 2,
			EstimatedDays:  14,
			EstimatedTime:  "2 tuần",
			TotalHours:     10,
			Courses: []models.PathStep{{
				CourseID:       &courseID,
				Reason:         "Phù hợp với cấp độ Cơ Bản",
				Order:          1,
				MatchScore:     90,
				EstimatedHours: 5,
			}},
		}},
		RecommendedCourses: []models.PathRecommendation{
			{CourseID: 1, Priority: 1, MatchScore: 90, EstimatedHours: 5},
			{CourseID: 2, Priority: 2, MatchScore: 80, EstimatedHours: 5},
		},
		Summary: datatypes.NewJSONType(models.PathSummary{
			TotalCourses:     2,
			TotalPhases:      1,
			SkillsCovered:    []string{"golang"},
			LevelProgression: "Cơ Bản",
		}),
		LastGeneratedAt: time.Now().UTC(),
	}
}

func setupPathTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.LearningPath{}))
	return db
}
