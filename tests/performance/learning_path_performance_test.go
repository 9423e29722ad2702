package performance_test

import (
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/learnora/learnora-api/internal/handler"
	"github.com/learnora/learnora-api/internal/models"
	"github.com/learnora/learnora-api/internal/repository"
	"github.com/learnora/learnora-api/internal/service"
)

func setupPathPerformanceApp(t *testing.T) *fiber.App {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Course{}, &models.Enrollment{}, &models.SurveyProfile{}, &models.LearningPath{}))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	// Seed dataset: a catalog large enough to make scoring non-trivial
	now := time.Now().UTC()
	levels := []string{"beginner", "intermediate"}
	for i := 1; i <= 40; i++ {
		course := models.Course{
			Title:      fmt.Sprintf("Khóa học %d", i),
			Level:      levels[i%len(levels)],
			Categories: []string{"golang", "backend"},
			Rating:     float64(i%5) + 0.5,
			Duration:   fmt.Sprintf("%d hours", 3+i%6),
			IsActive:   true,
		}
		require.NoError(t, db.Create(&course).Error)
	}

	profile := models.SurveyProfile{
		StudentID:            1,
		LearningGoal:         "Trở thành backend developer",
		InterestedSkills:     []string{"golang"},
		CurrentLevel:         "intermediate",
		WeeklyStudyHours:     "8-15",
		TargetCompletionTime: "6-months",
		SurveyCompleted:      true,
		CompletedAt:          &now,
	}
	require.NoError(t, db.Create(&profile).Error)

	validate := validator.New(validator.WithRequiredStructEnabled())
	pathService := service.NewLearningPathService(
		repository.NewCourseRepository(db),
		repository.NewSurveyProfileRepository(db),
		repository.NewLearningPathRepository(db),
		nil,
		nil,
		redisClient,
		time.Minute,
		validate,
		zerolog.Nop(),
	)

	app := fiber.New()
	group := app.Group("/api/v1/learning-path", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(1))
		return c.Next()
	})
	handler.NewLearningPathHandler(pathService, zerolog.Nop()).Register(group)

	return app
}

func p95(durations []time.Duration) time.Duration {
	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
	index := int(math.Ceil(0.95*float64(len(durations)))) - 1
	if index < 0 {
		index = 0
	}
	return durations[index]
}

func TestGenerateP95LatencyBelow500ms(t *testing.T) {
	app := setupPathPerformanceApp(t)

	runs := 25
	durations := make([]time.Duration, 0, runs)

	for i := 0; i < runs; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/learning-path/generate", nil)
		start := time.Now()
		resp, err := app.Test(req, 10000)
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		durations = append(durations, time.Since(start))
	}

	require.LessOrEqual(t, p95(durations), 500*time.Millisecond)
}

func TestCachedReadP95LatencyBelow250ms(t *testing.T) {
	app := setupPathPerformanceApp(t)

	warmup := httptest.NewRequest(http.MethodPost, "/api/v1/learning-path/generate", nil)
	warmupResp, err := app.Test(warmup, 10000)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, warmupResp.StatusCode)
	warmupResp.Body.Close()

	runs := 40
	durations := make([]time.Duration, 0, runs)

	for i := 0; i < runs; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/learning-path", nil)
		start := time.Now()
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		durations = append(durations, time.Since(start))
	}

	require.LessOrEqual(t, p95(durations), 250*time.Millisecond)
}
