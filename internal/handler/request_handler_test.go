package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campusconnect-api/internal/dto"
	"github.com/noah-isme/campusconnect-api/internal/models"
	appErrors "github.com/noah-isme/campusconnect-api/pkg/errors"
	"github.com/noah-isme/campusconnect-api/pkg/listing"
)

type requestServiceStub struct {
	submitted dto.CreateParentRequest
	acted     dto.ActOnRequest
	actErr    error
}

func (s *requestServiceStub) List(context.Context, models.Scope, models.RequestFilter, listing.Query) (listing.Result[models.ParentRequest], error) {
	return listing.Result[models.ParentRequest]{Page: 1, PageSize: 20, Empty: true}, nil
}

func (s *requestServiceStub) Submit(_ context.Context, scope models.Scope, req dto.CreateParentRequest) (*models.ParentRequest, error) {
	s.submitted = req
	return &models.ParentRequest{ID: "REQ3", SchoolID: scope.SchoolID, StudentID: req.StudentID, Type: req.Type}, nil
}

func (s *requestServiceStub) Act(_ context.Context, scope models.Scope, id string, req dto.ActOnRequest) (*models.RequestHistoryItem, error) {
	s.acted = req
	if s.actErr != nil {
		return nil, s.actErr
	}
	return &models.RequestHistoryItem{ID: "H-" + id, RequestID: id, Action: req.Action, Note: req.Note, ActedBy: scope.Name, ActedAt: time.Now()}, nil
}

type historyServiceStub struct {
	items   []models.RequestHistoryItem
	editErr error
}

func (s *historyServiceStub) List(context.Context, models.Scope, models.HistoryFilter, listing.Query) (listing.Result[models.RequestHistoryItem], error) {
	return listing.Result[models.RequestHistoryItem]{Items: s.items, Total: len(s.items), Page: 1, PageSize: 20}, nil
}

func (s *historyServiceStub) EditNote(_ context.Context, _ models.Scope, id string, req dto.EditNoteRequest) (*models.RequestHistoryItem, error) {
	if s.editErr != nil {
		return nil, s.editErr
	}
	return &models.RequestHistoryItem{ID: id, Note: req.Note, EditCount: 1}, nil
}

func (s *historyServiceStub) Unlock(_ context.Context, _ models.Scope, id string) (*models.RequestHistoryItem, error) {
	return &models.RequestHistoryItem{ID: id, EditUnlocked: true}, nil
}

func TestRequestHandlerSubmit(t *testing.T) {
	svc := &requestServiceStub{}
	h := NewRequestHandler(svc, &historyServiceStub{}, &exporterStub{})

	body, _ := json.Marshal(dto.CreateParentRequest{StudentID: "STU1", StudentName: "Aarav", Type: models.RequestTypeLeave, Details: "Family trip"})
	c, w := newGinContext(http.MethodPost, "/requests", body)
	withClaims(c, parentClaims)
	h.Submit(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Family trip", svc.submitted.Details)
}

func TestRequestHandlerSubmitMalformedBody(t *testing.T) {
	h := NewRequestHandler(&requestServiceStub{}, &historyServiceStub{}, &exporterStub{})

	c, w := newGinContext(http.MethodPost, "/requests", []byte("{"))
	withClaims(c, parentClaims)
	h.Submit(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid request body", decode(t, w).Error.Message)
}

func TestRequestHandlerActReturnsHistoryItem(t *testing.T) {
	svc := &requestServiceStub{}
	h := NewRequestHandler(svc, &historyServiceStub{}, &exporterStub{})

	body, _ := json.Marshal(dto.ActOnRequest{Action: models.RequestActionApproved, Note: "Receipt verified"})
	c, w := newGinContext(http.MethodPost, "/requests/REQ1/act", body)
	c.AddParam("id", "REQ1")
	withClaims(c, principalClaims)
	h.Act(c)

	require.Equal(t, http.StatusOK, w.Code)
	var item dto.HistoryItemResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &item))
	assert.Equal(t, "REQ1", item.RequestID)
	assert.Equal(t, "Dr. Rao", item.ActedBy)
	assert.True(t, item.CanEdit)
	assert.Equal(t, models.MaxFreeEdits, item.EditsRemaining)
}

func TestRequestHandlerActAlreadyHandled(t *testing.T) {
	svc := &requestServiceStub{actErr: appErrors.Clone(appErrors.ErrNotFound, "request already handled")}
	h := NewRequestHandler(svc, &historyServiceStub{}, &exporterStub{})

	body, _ := json.Marshal(dto.ActOnRequest{Action: models.RequestActionRejected})
	c, w := newGinContext(http.MethodPost, "/requests/REQ1/act", body)
	c.AddParam("id", "REQ1")
	withClaims(c, principalClaims)
	h.Act(c)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "request already handled", decode(t, w).Error.Message)
}

func TestRequestHandlerHistoryAddsEditAllowance(t *testing.T) {
	history := &historyServiceStub{items: []models.RequestHistoryItem{
		{ID: "H1", EditCount: 0},
		{ID: "H2", EditCount: models.MaxFreeEdits},
	}}
	h := NewRequestHandler(&requestServiceStub{}, history, &exporterStub{})

	c, w := newGinContext(http.MethodGet, "/requests/history", nil)
	withClaims(c, principalClaims)
	h.History(c)

	require.Equal(t, http.StatusOK, w.Code)
	var items []dto.HistoryItemResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &items))
	require.Len(t, items, 2)
	assert.True(t, items[0].CanEdit)
	assert.False(t, items[1].CanEdit)
	assert.Equal(t, 0, items[1].EditsRemaining)
}

func TestRequestHandlerEditNoteOverLimit(t *testing.T) {
	history := &historyServiceStub{editErr: appErrors.Clone(appErrors.ErrPaymentRequired, "free edits used up")}
	h := NewRequestHandler(&requestServiceStub{}, history, &exporterStub{})

	body, _ := json.Marshal(dto.EditNoteRequest{Note: "third try"})
	c, w := newGinContext(http.MethodPatch, "/requests/history/H1", body)
	c.AddParam("id", "H1")
	withClaims(c, principalClaims)
	h.EditNote(c)

	require.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Equal(t, "PAYMENT_REQUIRED", decode(t, w).Error.Code)
}

func TestRequestHandlerUnlock(t *testing.T) {
	h := NewRequestHandler(&requestServiceStub{}, &historyServiceStub{}, &exporterStub{})

	c, w := newGinContext(http.MethodPost, "/requests/history/H1/unlock", nil)
	c.AddParam("id", "H1")
	withClaims(c, principalClaims)
	h.Unlock(c)

	require.Equal(t, http.StatusOK, w.Code)
	var item dto.HistoryItemResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &item))
	assert.True(t, item.EditUnlocked)
	assert.True(t, item.CanEdit)
}

func TestRequestHandlerExportHistory(t *testing.T) {
	exports := &exporterStub{}
	h := NewRequestHandler(&requestServiceStub{}, &historyServiceStub{}, exports)

	c, w := newGinContext(http.MethodGet, "/requests/history/export?action=Approved", nil)
	withClaims(c, principalClaims)
	h.ExportHistory(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ReportTypeRequestHistory, exports.gotType)
	assert.Equal(t, "Approved", exports.gotFilters.Get("action"))
}
