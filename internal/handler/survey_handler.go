package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/learnora/learnora-api/internal/dto"
	"github.com/learnora/learnora-api/internal/service"
	"github.com/learnora/learnora-api/internal/utils"
)

// SurveyHandler exposes the onboarding survey endpoints.
type SurveyHandler struct {
	service service.SurveyService
	logger  zerolog.Logger
}

// NewSurveyHandler constructs a survey handler.
func NewSurveyHandler(service service.SurveyService, logger zerolog.Logger) *SurveyHandler {
	return &SurveyHandler{
		service: service,
		logger:  logger.With().Str("component", "survey_handler").Logger(),
	}
}

// Register wires survey routes.
func (h *SurveyHandler) Register(router fiber.Router) {
	router.Post("/", h.submit)
	router.Get("/", h.get)
}

func (h *SurveyHandler) submit(c *fiber.Ctx) error {
	studentID := userIDFromContext(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.SurveySubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "invalid request body", nil)
	}

	result, err := h.service.Submit(c.Context(), studentID, payload)
	if err != nil {
		return h.handleError(c, err, "failed to store survey")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "survey saved", result)
}

func (h *SurveyHandler) get(c *fiber.Ctx) error {
	studentID := userIDFromContext(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	result, err := h.service.Get(c.Context(), studentID)
	if err != nil {
		return h.handleError(c, err, "failed to fetch survey")
	}

	return utils.SendSuccess(c, "survey retrieved", result)
}

func (h *SurveyHandler) handleError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrSurveyNotFound):
		return utils.SendErrorCode(c, fiber.StatusNotFound, "SURVEY_REQUIRED", "no survey on file, complete the onboarding survey first", nil)
	case errors.Is(err, service.ErrInvalidSurvey):
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
	case isValidationError(err):
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "invalid survey payload", validationFieldErrors(err))
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
