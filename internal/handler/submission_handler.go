package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/web-source-dev/questionare-server/internal/dto"
	"github.com/web-source-dev/questionare-server/internal/service"
	"github.com/web-source-dev/questionare-server/internal/utils"
)

// SubmissionHandler serves the quiz submission endpoints.
type SubmissionHandler struct {
	service service.SubmissionService
	logger  zerolog.Logger
}

// NewSubmissionHandler builds a submission handler instance.
func NewSubmissionHandler(svc service.SubmissionService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service: svc,
		logger:  logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group. The paths match
// the deployed client exactly.
func (h *SubmissionHandler) Register(router fiber.Router) {
	router.Post("/submitUserData", h.submit)
	router.Get("/getAllSubmissions", h.list)
}

func (h *SubmissionHandler) submit(c *fiber.Ctx) error {
	var payload dto.SubmissionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.service.Submit(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "Quiz submitted successfully!", submission)
}

// list returns the bare submission array. Deployed clients iterate the
// response body directly, so no envelope here.
func (h *SubmissionHandler) list(c *fiber.Ctx) error {
	submissions, err := h.service.ListAll(c.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to retrieve submissions")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to retrieve submissions")
	}

	return c.Status(fiber.StatusOK).JSON(submissions)
}

func (h *SubmissionHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrUnknownQuestion):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("failed to submit quiz")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to submit quiz")
	}
}
