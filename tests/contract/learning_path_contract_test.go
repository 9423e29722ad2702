package contract_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/learnora/learnora-api/internal/dto"
	"github.com/learnora/learnora-api/internal/handler"
)

type stubPathService struct {
	response dto.LearningPathResponse
}

func (s stubPathService) Generate(context.Context, uint, dto.GenerateLearningPathRequest) (dto.LearningPathResponse, error) {
	return s.response, nil
}

func (s stubPathService) Get(context.Context, uint) (dto.LearningPathResponse, error) {
	return s.response, nil
}

func compilePathSchema(t *testing.T) *jsonschema.Schema {
	t.Helper()
	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", "learning_path.schema.json"))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)
	return schema
}

func pathContractApp(svc stubPathService) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/learning-path", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(1))
		return c.Next()
	})
	handler.NewLearningPathHandler(svc, zerolog.Nop()).Register(group)
	return app
}

func validateAgainst(t *testing.T, schema *jsonschema.Schema, resp *http.Response) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))
}

func TestGeneratedLearningPathContract(t *testing.T) {
	schema := compilePathSchema(t)

	now := time.Now().UTC()
	courseID := uint(1)
	snapshot := dto.CourseSnapshot{
		ID:          1,
		Title:       "Go cơ bản",
		Level:       "beginner",
		Duration:    "5 hours",
		Price:       149000,
		Rating:      4.8,
		RatingCount: 120,
		Categories:  []string{"golang"},
	}

	response := dto.LearningPathResponse{
		PathTitle:    "Lộ trình học tập: Trở thành backend developer",
		LearningGoal: "Trở thành backend developer",
		Source:       "generated",
		Phases: []dto.PathPhaseResponse{{
			Title:          "Giai Đoạn 1: Cơ Bản",
			Description:    "1 khóa học ở cấp độ Cơ Bản",
			PhaseRationale: "Bắt đầu từ nền tảng.",
			Order:          1,
			EstimatedWeeks: 1,
			EstimatedDays:  7,
			EstimatedTime:  "1 tuần",
			TotalHours:     5,
			Courses: []dto.PathStepResponse{{
				CourseID:       &courseID,
				Course:         &snapshot,
				Reason:         "Phù hợp với cấp độ Cơ Bản",
				Order:          1,
				MatchScore:     90,
				EstimatedHours: 5,
			}},
		}},
		RecommendedCourses: []dto.RecommendationResponse{{
			Course:         snapshot,
			Reason:         "Phù hợp với cấp độ Cơ Bản",
			Priority:       1,
			MatchScore:     90,
			EstimatedHours: 5,
		}},
		PathSummary: dto.PathSummaryResponse{
			TotalCourses:        1,
			TotalEstimatedHours: 5,
			TotalPhases:         1,
			SkillsCovered:       []string{"golang"},
			LevelProgression:    "Cơ Bản",
		},
		LastGeneratedAt:   now,
		RegenerationCount: 1,
	}

	app := pathContractApp(stubPathService{response: response})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/learning-path", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	validateAgainst(t, schema, resp)
}

func TestCustomLearningPathContract(t *testing.T) {
	schema := compilePathSchema(t)

	response := dto.LearningPathResponse{
		PathTitle:    "Lộ trình của tôi",
		LearningGoal: "Tự xây lộ trình",
		Source:       "custom",
		Phases: []dto.PathPhaseResponse{{
			Title:          "Giai đoạn duy nhất",
			PhaseRationale: "",
			Order:          1,
			EstimatedWeeks: 1,
			EstimatedDays:  7,
			EstimatedTime:  "1 tuần",
			TotalHours:     0,
			Courses: []dto.PathStepResponse{{
				CourseID: nil,
				Title:    "Tài liệu ngoài",
				Order:    1,
			}},
		}},
		RecommendedCourses: []dto.RecommendationResponse{},
		PathSummary: dto.PathSummaryResponse{
			SkillsCovered:    []string{},
			LevelProgression: "Tùy chỉnh",
		},
		LastGeneratedAt:   time.Now().UTC(),
		RegenerationCount: 2,
		Warnings:          []string{"phase 1 step 1: course id abc is not a valid id, reference removed"},
	}

	app := pathContractApp(stubPathService{response: response})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/learning-path", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	validateAgainst(t, schema, resp)
}
