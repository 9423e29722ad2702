package handler_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/learnora/learnora-api/internal/dto"
	"github.com/learnora/learnora-api/internal/handler"
	"github.com/learnora/learnora-api/internal/service"
)

type stubPathService struct {
	lastStudentID  uint
	lastRequest    dto.GenerateLearningPathRequest
	generateResult dto.LearningPathResponse
	generateErr    error
	getResult      dto.LearningPathResponse
	getErr         error
}

func (s *stubPathService) Generate(_ context.Context, studentID uint, req dto.GenerateLearningPathRequest) (dto.LearningPathResponse, error) {
	s.lastStudentID = studentID
	s.lastRequest = req
	if s.generateErr != nil {
		return dto.LearningPathResponse{}, s.generateErr
	}
	return s.generateResult, nil
}

func (s *stubPathService) Get(_ context.Context, studentID uint) (dto.LearningPathResponse, error) {
	s.lastStudentID = studentID
	if s.getErr != nil {
		return dto.LearningPathResponse{}, s.getErr
	}
	return s.getResult, nil
}

func newPathApp(svc service.LearningPathService, studentID uint, guards ...fiber.Handler) *fiber.App {
	app := fiber.New()
	group := authenticatedGroup(app, "/api/v1/learning-path", studentID)
	handler.NewLearningPathHandler(svc, zerolog.New(io.Discard)).Register(group, guards...)
	return app
}

func TestLearningPathHandler_GenerateSuccess(t *testing.T) {
	svc := &stubPathService{generateResult: dto.LearningPathResponse{
		PathTitle:    "Lộ trình học tập: Backend",
		LearningGoal: "Backend",
		Source:       "generated",
	}}
	app := newPathApp(svc, 11)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/learning-path/generate", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var envelope apiEnvelope
	decodeResponse(t, resp, &envelope)
	require.True(t, envelope.Success)
	require.Equal(t, uint(11), svc.lastStudentID)
	require.Nil(t, svc.lastRequest.CustomPath)
}

func TestLearningPathHandler_GenerateForwardsCustomPayload(t *testing.T) {
	svc := &stubPathService{generateResult: dto.LearningPathResponse{Source: "custom"}}
	app := newPathApp(svc, 11)

	body := []byte(`{"custom_path":{"path_title":"Lộ trình của tôi","phases":[{"title":"Giai đoạn 1","steps":[{"title":"Học Go","course_id":3}]}]}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/learning-path/generate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.NotNil(t, svc.lastRequest.CustomPath)
	require.Equal(t, "Lộ trình của tôi", svc.lastRequest.CustomPath.PathTitle)
	require.Len(t, svc.lastRequest.CustomPath.Phases, 1)
}

func TestLearningPathHandler_GenerateSurveyRequired(t *testing.T) {
	svc := &stubPathService{generateErr: service.ErrSurveyRequired}
	app := newPathApp(svc, 11)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/learning-path/generate", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var envelope apiEnvelope
	decodeResponse(t, resp, &envelope)
	require.Equal(t, "SURVEY_REQUIRED", envelope.Code)
}

func TestLearningPathHandler_GenerateNoMatchingCourses(t *testing.T) {
	svc := &stubPathService{generateErr: service.ErrNoMatchingCourses}
	app := newPathApp(svc, 11)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/learning-path/generate", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var envelope apiEnvelope
	decodeResponse(t, resp, &envelope)
	require.Equal(t, "NO_MATCHING_COURSES", envelope.Code)
}

func TestLearningPathHandler_GenerateInvalidCustomPath(t *testing.T) {
	svc := &stubPathService{generateErr: fmt.Errorf("%w: phase 1 title is required", service.ErrInvalidCustomPath)}
	app := newPathApp(svc, 11)

	body := []byte(`{"custom_path":{"phases":[{"title":""}]}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/learning-path/generate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var envelope apiEnvelope
	decodeResponse(t, resp, &envelope)
	require.Equal(t, "VALIDATION_ERROR", envelope.Code)
	require.Contains(t, envelope.Message, "phase 1 title is required")
}

func TestLearningPathHandler_GenerateRunsGuards(t *testing.T) {
	svc := &stubPathService{generateResult: dto.LearningPathResponse{}}
	guard := func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"success": false})
	}
	app := newPathApp(svc, 11, guard)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/learning-path/generate", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	require.Zero(t, svc.lastStudentID)
}

func TestLearningPathHandler_GetGenerationRequired(t *testing.T) {
	svc := &stubPathService{getErr: service.ErrGenerationRequired}
	app := newPathApp(svc, 11)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/learning-path", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var envelope apiEnvelope
	decodeResponse(t, resp, &envelope)
	require.Equal(t, "GENERATION_REQUIRED", envelope.Code)
}

func TestLearningPathHandler_GetReturnsStoredPath(t *testing.T) {
	svc := &stubPathService{getResult: dto.LearningPathResponse{
		PathTitle: "Lộ trình học tập: Data",
		Source:    "generated",
	}}
	app := newPathApp(svc, 11)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/learning-path", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var envelope apiEnvelope
	decodeResponse(t, resp, &envelope)
	require.True(t, envelope.Success)
	require.Equal(t, "learning path retrieved", envelope.Message)
}
