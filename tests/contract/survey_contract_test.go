package contract_test

import (
	"context"
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

type stubSurveyService struct {
	response dto.SurveyResponse
}

func (s stubSurveyService) Submit(context.Context, uint, dto.SurveySubmitRequest) (dto.SurveyResponse, error) {
	return s.response, nil
}

func (s stubSurveyService) Get(context.Context, uint) (dto.SurveyResponse, error) {
	return s.response, nil
}

func TestSurveyProfileContract(t *testing.T) {
	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", "survey_profile.schema.json"))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)

	now := time.Now().UTC()
	response := dto.SurveyResponse{
		StudentID:            1,
		LearningGoal:         "Trở thành backend developer",
		Objectives:           []string{"Đổi nghề"},
		InterestedSkills:     []string{"golang", "backend"},
		CurrentLevel:         "beginner",
		WeeklyStudyHours:     "4-7",
		TargetCompletionTime: "3-months",
		SurveyCompleted:      true,
		CompletedAt:          &now,
		UpdatedAt:            now,
	}

	app := fiber.New()
	group := app.Group("/api/v1/survey", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(1))
		return c.Next()
	})
	handler.NewSurveyHandler(stubSurveyService{response: response}, zerolog.Nop()).Register(group)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/survey", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	validateAgainst(t, schema, resp)
}
