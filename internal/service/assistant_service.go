package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campusconnect-api/internal/dto"
	"github.com/noah-isme/campusconnect-api/internal/models"
	appErrors "github.com/noah-isme/campusconnect-api/pkg/errors"
	"github.com/noah-isme/campusconnect-api/pkg/export"
	"github.com/noah-isme/campusconnect-api/pkg/flows"
	"github.com/noah-isme/campusconnect-api/pkg/listing"
)

type flowClient interface {
	GenerateQuiz(ctx context.Context, req flows.QuizRequest) (*flows.Quiz, error)
	GenerateLessonPlan(ctx context.Context, req flows.LessonPlanRequest) (*flows.LessonPlan, error)
	AskDoubtSolver(ctx context.Context, req flows.DoubtRequest) (*flows.DoubtAnswer, error)
	PredictLateFeePayers(ctx context.Context, req flows.LateFeeRequest) (*flows.LateFeeForecast, error)
	AdditionalStudentBilling(ctx context.Context, req flows.BillingRequest) (*flows.BillingNotice, error)
	ExtractTextFromImage(ctx context.Context, req flows.ExtractTextRequest) (*flows.ExtractedText, error)
	ProcessVoiceCommand(ctx context.Context, req flows.VoiceCommandRequest) (*flows.VoiceAction, error)
}

type unpaidInvoiceSource interface {
	Rows(ctx context.Context, scope models.Scope, filter models.InvoiceFilter, sort listing.SortState) ([]models.Invoice, error)
}

var lateFeeColumns = []export.Column{
	{Header: "Invoice ID", Key: "id"},
	{Header: "Student ID", Key: "studentId"},
	{Header: "Description", Key: "description", Quote: export.QuoteAlways},
	{Header: "Amount", Key: "amount"},
	{Header: "Due Date", Key: "dueDate"},
	{Header: "Status", Key: "status"},
}

// AssistantService fronts the AI flows. Each call is a single request: failures
// surface as FLOW_FAILED with the collaborator's message and are never retried.
type AssistantService struct {
	client     flowClient
	invoices   unpaidInvoiceSource
	schoolName string
	validator  *validator.Validate
	metrics    *MetricsService
	logger     *zap.Logger
}

// NewAssistantService constructs the assistant service. schoolName is used on
// billing notices that do not name a school.
func NewAssistantService(client flowClient, invoices unpaidInvoiceSource, schoolName string, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *AssistantService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssistantService{
		client:     client,
		invoices:   invoices,
		schoolName: schoolName,
		validator:  validate,
		metrics:    metrics,
		logger:     logger,
	}
}

// GenerateQuiz returns a ten question quiz.
func (s *AssistantService) GenerateQuiz(ctx context.Context, req dto.QuizRequest) (*flows.Quiz, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationErr(err, "invalid quiz request")
	}
	return invoke(ctx, s, "generateQuiz", func(ctx context.Context) (*flows.Quiz, error) {
		return s.client.GenerateQuiz(ctx, flows.QuizRequest{Subject: req.Subject, Topic: req.Topic, Difficulty: req.Difficulty})
	})
}

// GenerateLessonPlan drafts a lesson plan.
func (s *AssistantService) GenerateLessonPlan(ctx context.Context, req dto.LessonPlanRequest) (*flows.LessonPlan, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationErr(err, "invalid lesson plan request")
	}
	return invoke(ctx, s, "generateLessonPlan", func(ctx context.Context) (*flows.LessonPlan, error) {
		return s.client.GenerateLessonPlan(ctx, flows.LessonPlanRequest{
			Subject:         req.Subject,
			Topic:           req.Topic,
			GradeLevel:      req.GradeLevel,
			DurationMinutes: req.DurationMinutes,
			Objectives:      req.Objectives,
		})
	})
}

// AskDoubtSolver answers a question, optionally about a photo, with prior turns as context.
func (s *AssistantService) AskDoubtSolver(ctx context.Context, req dto.DoubtRequest) (*flows.DoubtAnswer, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationErr(err, "invalid doubt solver request")
	}
	history := make([]flows.ChatTurn, 0, len(req.History))
	for _, turn := range req.History {
		history = append(history, flows.ChatTurn{Role: turn.Role, Content: turn.Content})
	}
	return invoke(ctx, s, "askDoubtSolver", func(ctx context.Context) (*flows.DoubtAnswer, error) {
		return s.client.AskDoubtSolver(ctx, flows.DoubtRequest{Question: req.Question, PhotoDataURI: req.PhotoDataURI, History: history})
	})
}

var overdueFirst = listing.Comparators[models.Invoice]{
	"overdue": listing.ByOrdered(func(inv models.Invoice) int {
		if inv.Status == models.InvoiceStatusOverdue {
			return 0
		}
		return 1
	}),
}

// PredictLateFeePayers sends the school's unpaid invoices, overdue first, to the prediction flow.
func (s *AssistantService) PredictLateFeePayers(ctx context.Context, scope models.Scope, req dto.LateFeeRequest) (*flows.LateFeeForecast, error) {
	rows, err := s.invoices.Rows(ctx, scope, models.InvoiceFilter{}, listing.SortState{Key: "dueDate"})
	if err != nil {
		return nil, err
	}
	var payable listing.Predicate[models.Invoice] = func(inv models.Invoice) bool { return inv.Status.Payable() }
	unpaid := listing.Filter(rows, payable)
	if len(unpaid) == 0 {
		return &flows.LateFeeForecast{Predictions: []flows.LateFeePrediction{}}, nil
	}
	// Overdue rows lead; the stable sort keeps due-date order inside each group.
	unpaid, err = listing.Sort(unpaid, listing.SortState{Key: "overdue"}, overdueFirst)
	if err != nil {
		return nil, internalErr(err, "failed to order invoices")
	}
	text, err := export.BuildDelimitedText(lateFeeColumns, tabulate(lateFeeColumns, unpaid, lateFeeRecord).Rows)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrExportFailed.Code, appErrors.ErrExportFailed.Status, "could not prepare invoices")
	}
	target := req.Scope
	if target == "" {
		target = "all"
	}
	return invoke(ctx, s, "predictLateFeePayers", func(ctx context.Context) (*flows.LateFeeForecast, error) {
		return s.client.PredictLateFeePayers(ctx, flows.LateFeeRequest{Scope: target, InvoicesCSV: text})
	})
}

// AdditionalStudentBilling drafts the notice for students beyond the plan.
func (s *AssistantService) AdditionalStudentBilling(ctx context.Context, req dto.BillingRequest) (*flows.BillingNotice, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationErr(err, "invalid billing request")
	}
	school := req.SchoolName
	if school == "" {
		school = s.schoolName
	}
	contacts := make([]flows.BillingContact, 0, len(req.Contacts))
	for _, c := range req.Contacts {
		contacts = append(contacts, flows.BillingContact{Name: c.Name, Email: c.Email, Phone: c.Phone})
	}
	return invoke(ctx, s, "additionalStudentBilling", func(ctx context.Context) (*flows.BillingNotice, error) {
		return s.client.AdditionalStudentBilling(ctx, flows.BillingRequest{
			SchoolName:      school,
			AdditionalCount: req.AdditionalCount,
			RatePerStudent:  req.RatePerStudent,
			Contacts:        contacts,
		})
	})
}

// ExtractTextFromImage runs OCR over a captured photo.
func (s *AssistantService) ExtractTextFromImage(ctx context.Context, req dto.ExtractTextRequest) (*flows.ExtractedText, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationErr(err, "a photo data URI is required")
	}
	return invoke(ctx, s, "extractTextFromImage", func(ctx context.Context) (*flows.ExtractedText, error) {
		return s.client.ExtractTextFromImage(ctx, flows.ExtractTextRequest{PhotoDataURI: req.PhotoDataURI})
	})
}

// ProcessVoiceCommand maps a transcribed command to a navigation action for the caller's role.
func (s *AssistantService) ProcessVoiceCommand(ctx context.Context, scope models.Scope, req dto.VoiceCommandRequest) (*flows.VoiceAction, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationErr(err, "a voice command is required")
	}
	return invoke(ctx, s, "processVoiceCommand", func(ctx context.Context) (*flows.VoiceAction, error) {
		return s.client.ProcessVoiceCommand(ctx, flows.VoiceCommandRequest{Command: req.Command, Role: string(scope.Role)})
	})
}

func invoke[T any](ctx context.Context, s *AssistantService, flow string, call func(context.Context) (*T, error)) (*T, error) {
	start := time.Now()
	out, err := call(ctx)
	s.metrics.ObserveFlow(flow, time.Since(start), err)
	if err != nil {
		s.logger.Warn("flow failed", zap.String("flow", flow), zap.Error(err))
		return nil, flowErr(err)
	}
	return out, nil
}

func flowErr(err error) error {
	message := appErrors.ErrFlowFailed.Message
	var fe *flows.Error
	if errors.As(err, &fe) && fe.Message != "" {
		message = fe.Message
	}
	return appErrors.Wrap(err, appErrors.ErrFlowFailed.Code, appErrors.ErrFlowFailed.Status, message)
}

func lateFeeRecord(inv models.Invoice) export.Record {
	return export.Record{
		"id":          inv.ID,
		"studentId":   inv.StudentID,
		"description": inv.Description,
		"amount":      inv.Amount,
		"dueDate":     inv.DueDate,
		"status":      inv.Status,
	}
}
