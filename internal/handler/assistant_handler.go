package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campusconnect-api/internal/dto"
	"github.com/noah-isme/campusconnect-api/internal/models"
	"github.com/noah-isme/campusconnect-api/pkg/flows"
	"github.com/noah-isme/campusconnect-api/pkg/response"
)

type assistantService interface {
	GenerateQuiz(ctx context.Context, req dto.QuizRequest) (*flows.Quiz, error)
	GenerateLessonPlan(ctx context.Context, req dto.LessonPlanRequest) (*flows.LessonPlan, error)
	AskDoubtSolver(ctx context.Context, req dto.DoubtRequest) (*flows.DoubtAnswer, error)
	PredictLateFeePayers(ctx context.Context, scope models.Scope, req dto.LateFeeRequest) (*flows.LateFeeForecast, error)
	AdditionalStudentBilling(ctx context.Context, req dto.BillingRequest) (*flows.BillingNotice, error)
	ExtractTextFromImage(ctx context.Context, req dto.ExtractTextRequest) (*flows.ExtractedText, error)
	ProcessVoiceCommand(ctx context.Context, scope models.Scope, req dto.VoiceCommandRequest) (*flows.VoiceAction, error)
}

// AssistantHandler exposes the AI assistant endpoints.
type AssistantHandler struct {
	assistant assistantService
}

// NewAssistantHandler constructs AssistantHandler.
func NewAssistantHandler(assistant assistantService) *AssistantHandler {
	return &AssistantHandler{assistant: assistant}
}

// handle binds the JSON body into a fresh In and relays the flow result.
func handle[In any, Out any](c *gin.Context, call func(ctx context.Context, scope models.Scope, in In) (*Out, error)) {
	scope, ok := scopeFromContext(c)
	if !ok {
		return
	}
	var in In
	if !bindJSON(c, &in) {
		return
	}
	out, err := call(c.Request.Context(), scope, in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, out, nil)
}

// Quiz godoc
// @Summary Generate a ten question quiz
// @Tags Assistant
// @Accept json
// @Produce json
// @Param payload body dto.QuizRequest true "Quiz topic"
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /ai/quiz [post]
func (h *AssistantHandler) Quiz(c *gin.Context) {
	handle(c, func(ctx context.Context, _ models.Scope, req dto.QuizRequest) (*flows.Quiz, error) {
		return h.assistant.GenerateQuiz(ctx, req)
	})
}

// LessonPlan godoc
// @Summary Draft a lesson plan
// @Tags Assistant
// @Accept json
// @Produce json
// @Param payload body dto.LessonPlanRequest true "Lesson outline"
// @Success 200 {object} response.Envelope
// @Router /ai/lesson-plan [post]
func (h *AssistantHandler) LessonPlan(c *gin.Context) {
	handle(c, func(ctx context.Context, _ models.Scope, req dto.LessonPlanRequest) (*flows.LessonPlan, error) {
		return h.assistant.GenerateLessonPlan(ctx, req)
	})
}

// DoubtSolver godoc
// @Summary Ask the doubt solver
// @Tags Assistant
// @Accept json
// @Produce json
// @Param payload body dto.DoubtRequest true "Question and prior turns"
// @Success 200 {object} response.Envelope
// @Router /ai/doubt [post]
func (h *AssistantHandler) DoubtSolver(c *gin.Context) {
	handle(c, func(ctx context.Context, _ models.Scope, req dto.DoubtRequest) (*flows.DoubtAnswer, error) {
		return h.assistant.AskDoubtSolver(ctx, req)
	})
}

// LateFees godoc
// @Summary Predict which families will pay late
// @Tags Assistant
// @Accept json
// @Produce json
// @Param payload body dto.LateFeeRequest false "Scope"
// @Success 200 {object} response.Envelope
// @Router /ai/late-fees [post]
func (h *AssistantHandler) LateFees(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		return
	}
	var req dto.LateFeeRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	forecast, err := h.assistant.PredictLateFeePayers(c.Request.Context(), scope, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, forecast, nil)
}

// Billing godoc
// @Summary Draft an additional student billing notice
// @Tags Assistant
// @Accept json
// @Produce json
// @Param payload body dto.BillingRequest true "Billing details"
// @Success 200 {object} response.Envelope
// @Router /ai/billing [post]
func (h *AssistantHandler) Billing(c *gin.Context) {
	handle(c, func(ctx context.Context, _ models.Scope, req dto.BillingRequest) (*flows.BillingNotice, error) {
		return h.assistant.AdditionalStudentBilling(ctx, req)
	})
}

// ExtractText godoc
// @Summary Extract text from a photo
// @Tags Assistant
// @Accept json
// @Produce json
// @Param payload body dto.ExtractTextRequest true "Photo data URI"
// @Success 200 {object} response.Envelope
// @Router /ai/ocr [post]
func (h *AssistantHandler) ExtractText(c *gin.Context) {
	handle(c, func(ctx context.Context, _ models.Scope, req dto.ExtractTextRequest) (*flows.ExtractedText, error) {
		return h.assistant.ExtractTextFromImage(ctx, req)
	})
}

// VoiceCommand godoc
// @Summary Map a voice command to a navigation action
// @Tags Assistant
// @Accept json
// @Produce json
// @Param payload body dto.VoiceCommandRequest true "Transcribed command"
// @Success 200 {object} response.Envelope
// @Router /ai/voice [post]
func (h *AssistantHandler) VoiceCommand(c *gin.Context) {
	handle(c, h.assistant.ProcessVoiceCommand)
}
