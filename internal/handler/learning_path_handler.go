package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/learnora/learnora-api/internal/dto"
	"github.com/learnora/learnora-api/internal/service"
	"github.com/learnora/learnora-api/internal/utils"
)

// LearningPathHandler exposes learning path generation and retrieval.
type LearningPathHandler struct {
	service service.LearningPathService
	logger  zerolog.Logger
}

// NewLearningPathHandler constructs a learning path handler.
func NewLearningPathHandler(service service.LearningPathService, logger zerolog.Logger) *LearningPathHandler {
	return &LearningPathHandler{
		service: service,
		logger:  logger.With().Str("component", "learning_path_handler").Logger(),
	}
}

// Register wires learning path routes. Guards run ahead of the generate
// handler, letting the router attach rate limiting to that route only.
func (h *LearningPathHandler) Register(router fiber.Router, generateGuards ...fiber.Handler) {
	chain := make([]fiber.Handler, 0, len(generateGuards)+1)
	chain = append(chain, generateGuards...)
	chain = append(chain, h.generate)
	router.Post("/generate", chain...)
	router.Get("/", h.get)
}

func (h *LearningPathHandler) generate(c *fiber.Ctx) error {
	studentID := userIDFromContext(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.GenerateLearningPathRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendErrorCode(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "invalid request body", nil)
		}
	}

	result, err := h.service.Generate(c.Context(), studentID, payload)
	if err != nil {
		return h.handleError(c, err, "failed to generate learning path")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "learning path generated", result)
}

func (h *LearningPathHandler) get(c *fiber.Ctx) error {
	studentID := userIDFromContext(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	result, err := h.service.Get(c.Context(), studentID)
	if err != nil {
		return h.handleError(c, err, "failed to fetch learning path")
	}

	return utils.SendSuccess(c, "learning path retrieved", result)
}

func (h *LearningPathHandler) handleError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrSurveyRequired):
		return utils.SendErrorCode(c, fiber.StatusNotFound, "SURVEY_REQUIRED", "complete the onboarding survey before requesting a learning path", nil)
	case errors.Is(err, service.ErrGenerationRequired):
		return utils.SendErrorCode(c, fiber.StatusNotFound, "GENERATION_REQUIRED", "no learning path yet, generate one first", nil)
	case errors.Is(err, service.ErrNoMatchingCourses):
		return utils.SendErrorCode(c, fiber.StatusNotFound, "NO_MATCHING_COURSES", "no active courses match your profile yet", nil)
	case errors.Is(err, service.ErrInvalidCustomPath):
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
	case isValidationError(err):
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "invalid custom path payload", validationFieldErrors(err))
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
