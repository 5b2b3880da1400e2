package service

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campusconnect-api/internal/dto"
	"github.com/noah-isme/campusconnect-api/internal/models"
	"github.com/noah-isme/campusconnect-api/internal/repository"
	appErrors "github.com/noah-isme/campusconnect-api/pkg/errors"
	"github.com/noah-isme/campusconnect-api/pkg/export"
	"github.com/noah-isme/campusconnect-api/pkg/listing"
)

type historyRepository interface {
	List(ctx context.Context, schoolID string) ([]models.RequestHistoryItem, error)
	UpdateNote(ctx context.Context, schoolID, id, note string) (*models.RequestHistoryItem, error)
	Unlock(ctx context.Context, schoolID, id string) (*models.RequestHistoryItem, error)
}

var historyPipeline = resourcePipeline[models.RequestHistoryItem]{
	name: "request history",
	sorts: listing.Comparators[models.RequestHistoryItem]{
		"actedAt": listing.ByTime(func(h models.RequestHistoryItem) time.Time { return h.ActedAt }),
		"action":  listing.ByString(func(h models.RequestHistoryItem) string { return string(h.Action) }),
		"type":    listing.ByString(func(h models.RequestHistoryItem) string { return string(h.Type) }),
	},
	fallback: listing.SortState{Key: "actedAt", Desc: true},
}

var historyColumns = []export.Column{
	{Header: "Request ID", Key: "requestId"},
	{Header: "Parent", Key: "parentName", Quote: export.QuoteAlways},
	{Header: "Student", Key: "studentName", Quote: export.QuoteAlways},
	{Header: "Type", Key: "type"},
	{Header: "Action", Key: "action"},
	{Header: "Note", Key: "note", Quote: export.QuoteAlways, Placeholder: "-"},
	{Header: "Acted By", Key: "actedBy", Quote: export.QuoteAlways},
	{Header: "Acted At", Key: "actedAt"},
}

func historyRecord(h models.RequestHistoryItem) export.Record {
	rec := export.Record{
		"requestId":   h.RequestID,
		"parentName":  h.ParentName,
		"studentName": h.StudentName,
		"type":        h.Type,
		"action":      h.Action,
		"actedBy":     h.ActedBy,
		"actedAt":     h.ActedAt,
	}
	if h.Note != "" {
		rec["note"] = h.Note
	}
	return rec
}

// HistoryService manages decisions already taken on parent requests.
type HistoryService struct {
	repo      historyRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewHistoryService constructs the history service.
func NewHistoryService(repo historyRepository, validate *validator.Validate, logger *zap.Logger) *HistoryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryService{repo: repo, validator: validate, logger: logger}
}

// List returns a page of history items.
func (s *HistoryService) List(ctx context.Context, scope models.Scope, filter models.HistoryFilter, q listing.Query) (listing.Result[models.RequestHistoryItem], error) {
	rows, err := s.repo.List(ctx, scope.SchoolID)
	if err != nil {
		return listing.Result[models.RequestHistoryItem]{}, internalErr(err, "failed to list request history")
	}
	return historyPipeline.page(rows, historyPredicates(filter), q)
}

// Dataset builds the request history export.
func (s *HistoryService) Dataset(ctx context.Context, scope models.Scope, filters url.Values) (*NamedDataset, error) {
	filter := dto.HistoryFilterFromQuery(filters)
	sort, err := exportSort(filters)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx, scope.SchoolID)
	if err != nil {
		return nil, internalErr(err, "failed to list request history")
	}
	rows, err = historyPipeline.all(rows, historyPredicates(filter), sort)
	if err != nil {
		return nil, err
	}
	return &NamedDataset{
		Subject:   string(models.ReportTypeRequestHistory),
		Qualifier: qualifier(filter.Action),
		Title:     "Request History",
		Data:      tabulate(historyColumns, rows, historyRecord),
	}, nil
}

// EditNote rewrites a decision note. Once the free edits are used up the
// caller has to pass the edit gate first.
func (s *HistoryService) EditNote(ctx context.Context, scope models.Scope, id string, req dto.EditNoteRequest) (*models.RequestHistoryItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationErr(err, "invalid note payload")
	}
	item, err := s.repo.UpdateNote(ctx, scope.SchoolID, id, strings.TrimSpace(req.Note))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "history item not found")
		case errors.Is(err, repository.ErrStateConflict):
			return nil, appErrors.Clone(appErrors.ErrPaymentRequired, "edit limit reached, unlock to continue editing")
		default:
			return nil, internalErr(err, "failed to update note")
		}
	}
	return item, nil
}

// Unlock passes the edit gate and restores the free edit allowance.
func (s *HistoryService) Unlock(ctx context.Context, scope models.Scope, id string) (*models.RequestHistoryItem, error) {
	item, err := s.repo.Unlock(ctx, scope.SchoolID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "history item not found")
		}
		return nil, internalErr(err, "failed to unlock history item")
	}
	s.logger.Info("history edit gate passed", zap.String("school_id", scope.SchoolID), zap.String("history_id", id), zap.String("actor", scope.UserID))
	return item, nil
}

func historyPredicates(f models.HistoryFilter) []listing.Predicate[models.RequestHistoryItem] {
	return []listing.Predicate[models.RequestHistoryItem]{
		listing.Contains(f.Search,
			func(h models.RequestHistoryItem) string { return h.ParentName },
			func(h models.RequestHistoryItem) string { return h.StudentName },
			func(h models.RequestHistoryItem) string { return h.Note }),
		listing.Equals(f.Action, func(h models.RequestHistoryItem) string { return string(h.Action) }),
	}
}
