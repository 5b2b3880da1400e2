package service

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/campusconnect-api/internal/dto"
	"github.com/noah-isme/campusconnect-api/internal/models"
	"github.com/noah-isme/campusconnect-api/internal/repository"
	"github.com/noah-isme/campusconnect-api/pkg/cache"
	appErrors "github.com/noah-isme/campusconnect-api/pkg/errors"
	"github.com/noah-isme/campusconnect-api/pkg/export"
	"github.com/noah-isme/campusconnect-api/pkg/listing"
)

type parentRequestRepository interface {
	ListPending(ctx context.Context, schoolID string) ([]models.ParentRequest, error)
	FindPending(ctx context.Context, schoolID, id string) (*models.ParentRequest, error)
	Create(ctx context.Context, req *models.ParentRequest) error
	Resolve(ctx context.Context, params repository.ResolveRequestParams) error
}

type invoiceLookup interface {
	FindByID(ctx context.Context, schoolID, id string) (*models.Invoice, error)
}

var requestPipeline = resourcePipeline[models.ParentRequest]{
	name: "parent requests",
	sorts: listing.Comparators[models.ParentRequest]{
		"submittedAt": listing.ByTime(func(r models.ParentRequest) time.Time { return r.SubmittedAt }),
		"type":        listing.ByString(func(r models.ParentRequest) string { return string(r.Type) }),
		"parentName":  listing.ByString(func(r models.ParentRequest) string { return r.ParentName }),
	},
	fallback: listing.SortState{Key: "submittedAt"},
}

var requestColumns = []export.Column{
	{Header: "Request ID", Key: "id"},
	{Header: "Parent", Key: "parentName", Quote: export.QuoteAlways},
	{Header: "Student", Key: "studentName", Quote: export.QuoteAlways},
	{Header: "Type", Key: "type"},
	{Header: "Details", Key: "details", Quote: export.QuoteAlways},
	{Header: "Invoice ID", Key: "invoiceId", Placeholder: "-"},
	{Header: "Submitted At", Key: "submittedAt"},
}

func requestRecord(r models.ParentRequest) export.Record {
	return export.Record{
		"id":          r.ID,
		"parentName":  r.ParentName,
		"studentName": r.StudentName,
		"type":        r.Type,
		"details":     r.Details,
		"invoiceId":   r.InvoiceID,
		"submittedAt": r.SubmittedAt,
	}
}

// RequestService manages the parent request queue.
type RequestService struct {
	repo      parentRequestRepository
	invoices  invoiceLookup
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewRequestService constructs the request service.
func NewRequestService(repo parentRequestRepository, invoices invoiceLookup, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *RequestService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestService{repo: repo, invoices: invoices, cache: cache, validator: validate, logger: logger, now: time.Now}
}

// List returns a page of pending requests.
func (s *RequestService) List(ctx context.Context, scope models.Scope, filter models.RequestFilter, q listing.Query) (listing.Result[models.ParentRequest], error) {
	rows, err := s.repo.ListPending(ctx, scope.SchoolID)
	if err != nil {
		return listing.Result[models.ParentRequest]{}, internalErr(err, "failed to list parent requests")
	}
	return requestPipeline.page(rows, requestPredicates(scope, filter), q)
}

// Dataset builds the pending request export.
func (s *RequestService) Dataset(ctx context.Context, scope models.Scope, filters url.Values) (*NamedDataset, error) {
	filter := dto.RequestFilterFromQuery(filters)
	sort, err := exportSort(filters)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListPending(ctx, scope.SchoolID)
	if err != nil {
		return nil, internalErr(err, "failed to list parent requests")
	}
	rows, err = requestPipeline.all(rows, requestPredicates(scope, filter), sort)
	if err != nil {
		return nil, err
	}
	return &NamedDataset{
		Subject:   string(models.ReportTypeParentRequests),
		Qualifier: qualifier(filter.Type),
		Title:     "Pending Parent Requests",
		Data:      tabulate(requestColumns, rows, requestRecord),
	}, nil
}

// Submit queues a new request from a parent for one of their children.
func (s *RequestService) Submit(ctx context.Context, scope models.Scope, req dto.CreateParentRequest) (*models.ParentRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationErr(err, "invalid request payload")
	}
	if !scope.CanSeeStudent(req.StudentID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "student not linked to caller")
	}
	var invoiceID *string
	if req.InvoiceID != nil && strings.TrimSpace(*req.InvoiceID) != "" {
		id := strings.TrimSpace(*req.InvoiceID)
		invoiceID = &id
	}
	if req.Type == models.RequestTypePaymentProof {
		if invoiceID == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invoiceId is required for payment proofs")
		}
		inv, err := s.invoices.FindByID(ctx, scope.SchoolID, *invoiceID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "invoice not found")
			}
			return nil, internalErr(err, "failed to load invoice")
		}
		if inv.StudentID != req.StudentID {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invoice belongs to another student")
		}
		if !inv.Status.Payable() {
			return nil, appErrors.Clone(appErrors.ErrConflict, "invoice already paid")
		}
	}
	parentName := scope.Name
	if parentName == "" {
		parentName = scope.UserID
	}
	created := &models.ParentRequest{
		ID:          "REQ-" + uuid.NewString(),
		SchoolID:    scope.SchoolID,
		ParentName:  parentName,
		StudentID:   req.StudentID,
		StudentName: req.StudentName,
		Type:        req.Type,
		Details:     strings.TrimSpace(req.Details),
		InvoiceID:   invoiceID,
		SubmittedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, created); err != nil {
		return nil, internalErr(err, "failed to submit request")
	}
	return created, nil
}

// Act approves or rejects a pending request, moving it into history in one step.
// Approving a payment proof settles the linked invoice.
func (s *RequestService) Act(ctx context.Context, scope models.Scope, id string, req dto.ActOnRequest) (*models.RequestHistoryItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationErr(err, "invalid action payload")
	}
	pending, err := s.repo.FindPending(ctx, scope.SchoolID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, internalErr(err, "failed to load request")
	}

	actedBy := scope.Name
	if actedBy == "" {
		actedBy = scope.UserID
	}
	now := s.now().UTC()
	item := models.RequestHistoryItem{
		ID:          "HIS-" + uuid.NewString(),
		SchoolID:    scope.SchoolID,
		RequestID:   pending.ID,
		ParentName:  pending.ParentName,
		StudentName: pending.StudentName,
		Type:        pending.Type,
		Details:     pending.Details,
		Action:      req.Action,
		Note:        strings.TrimSpace(req.Note),
		ActedBy:     actedBy,
		ActedAt:     now,
	}
	params := repository.ResolveRequestParams{SchoolID: scope.SchoolID, RequestID: pending.ID, Item: item}
	settles := req.Action == models.RequestActionApproved && pending.Type == models.RequestTypePaymentProof && pending.InvoiceID != nil
	if settles {
		params.SettleInvoiceID = *pending.InvoiceID
		params.PaidOn = models.NewDate(now)
	}

	if err := s.repo.Resolve(ctx, params); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request already handled")
		case errors.Is(err, repository.ErrLinkedInvoiceMissing):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "linked invoice not found")
		default:
			return nil, internalErr(err, "failed to resolve request")
		}
	}
	if settles {
		_ = s.cache.Invalidate(ctx, cache.Pattern(scope.SchoolID, "fees"))
	}
	s.logger.Info("parent request resolved",
		zap.String("school_id", scope.SchoolID),
		zap.String("request_id", pending.ID),
		zap.String("action", string(req.Action)),
		zap.Bool("invoice_settled", settles))
	return &item, nil
}

func requestPredicates(scope models.Scope, f models.RequestFilter) []listing.Predicate[models.ParentRequest] {
	return []listing.Predicate[models.ParentRequest]{
		studentScope(scope, func(r models.ParentRequest) string { return r.StudentID }),
		listing.Contains(f.Search,
			func(r models.ParentRequest) string { return r.ParentName },
			func(r models.ParentRequest) string { return r.StudentName },
			func(r models.ParentRequest) string { return r.Details }),
		listing.Equals(f.Type, func(r models.ParentRequest) string { return string(r.Type) }),
	}
}
