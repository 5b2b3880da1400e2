package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campusconnect-api/internal/middleware"
	"github.com/noah-isme/campusconnect-api/internal/models"
	appErrors "github.com/noah-isme/campusconnect-api/pkg/errors"
	"github.com/noah-isme/campusconnect-api/pkg/export"
	"github.com/noah-isme/campusconnect-api/pkg/listing"
)

type invoiceServiceStub struct {
	page      listing.Result[models.Invoice]
	gotFilter models.InvoiceFilter
	gotQuery  listing.Query
	gotScope  models.Scope
	payErr    error
	summary   *models.FeeSummary
	hit       bool
}

func (s *invoiceServiceStub) List(_ context.Context, scope models.Scope, filter models.InvoiceFilter, q listing.Query) (listing.Result[models.Invoice], error) {
	s.gotScope, s.gotFilter, s.gotQuery = scope, filter, q
	return s.page, nil
}

func (s *invoiceServiceStub) Pay(_ context.Context, scope models.Scope, id string) (*models.Invoice, error) {
	if s.payErr != nil {
		return nil, s.payErr
	}
	return &models.Invoice{ID: id, SchoolID: scope.SchoolID, Status: models.InvoiceStatusPaid}, nil
}

func (s *invoiceServiceStub) Summary(_ context.Context, scope models.Scope, studentID string) (*models.FeeSummary, bool, error) {
	s.gotScope = scope
	return s.summary, s.hit, nil
}

type exporterStub struct {
	gotType    models.ReportType
	gotFilters url.Values
	gotFormat  models.ReportFormat
	err        error
}

func (s *exporterStub) Download(_ context.Context, t models.ReportType, _ models.Scope, filters url.Values, format models.ReportFormat) (export.Attachment, error) {
	s.gotType, s.gotFilters, s.gotFormat = t, filters, format
	if s.err != nil {
		return export.Attachment{}, s.err
	}
	return export.NewCSVAttachment("fee_invoices_pending.csv", "Invoice ID,Amount\nINV1002,2500"), nil
}

func TestInvoiceHandlerListParsesFiltersAndSort(t *testing.T) {
	svc := &invoiceServiceStub{page: listing.Result[models.Invoice]{
		Items:    []models.Invoice{{ID: "INV1002", Amount: 2500, Status: models.InvoiceStatusPending}},
		Total:    1,
		Page:     1,
		PageSize: 20,
		Sort:     listing.SortState{Key: "amount", Desc: true},
	}}
	h := NewInvoiceHandler(svc, &exporterStub{})

	c, w := newGinContext(http.MethodGet, "/invoices?status=Pending&search=bus&sort=amount&order=desc", nil)
	withClaims(c, parentClaims)
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Pending", svc.gotFilter.Status)
	assert.Equal(t, "bus", svc.gotFilter.Search)
	assert.Equal(t, listing.SortState{Key: "amount", Desc: true}, svc.gotQuery.Sort)
	assert.Equal(t, []string{"STU1"}, svc.gotScope.StudentIDs)

	env := decode(t, w)
	assert.Equal(t, 1, env.Pagination["total_count"])
	assert.Equal(t, "amount", env.Meta["sort"])
	assert.Equal(t, false, env.Meta["empty"])
	var rows []models.Invoice
	require.NoError(t, json.Unmarshal(env.Data, &rows))
	assert.Equal(t, "INV1002", rows[0].ID)
}

func TestInvoiceHandlerListEmptyPageIsArray(t *testing.T) {
	h := NewInvoiceHandler(&invoiceServiceStub{page: listing.Result[models.Invoice]{Page: 1, PageSize: 20, Empty: true}}, &exporterStub{})

	c, w := newGinContext(http.MethodGet, "/invoices", nil)
	withClaims(c, principalClaims)
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.JSONEq(t, "[]", string(env.Data))
	assert.Equal(t, "no results", env.Meta["message"])
}

func TestInvoiceHandlerRejectsBadQuery(t *testing.T) {
	h := NewInvoiceHandler(&invoiceServiceStub{}, &exporterStub{})

	c, w := newGinContext(http.MethodGet, "/invoices?page=two", nil)
	withClaims(c, principalClaims)
	h.List(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, appErrors.ErrValidation.Code, decode(t, w).Error.Code)
}

func TestInvoiceHandlerRequiresClaims(t *testing.T) {
	h := NewInvoiceHandler(&invoiceServiceStub{}, &exporterStub{})

	c, w := newGinContext(http.MethodGet, "/invoices", nil)
	h.List(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestInvoiceHandlerExportWritesAttachment(t *testing.T) {
	exports := &exporterStub{}
	h := NewInvoiceHandler(&invoiceServiceStub{}, exports)

	c, w := newGinContext(http.MethodGet, "/invoices/export?status=Pending", nil)
	withClaims(c, parentClaims)
	h.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ReportTypeFeeInvoices, exports.gotType)
	assert.Equal(t, models.ReportFormatCSV, exports.gotFormat)
	assert.Equal(t, "Pending", exports.gotFilters.Get("status"))
	assert.Equal(t, export.CSVMIMEType, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="fee_invoices_pending.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "Invoice ID,Amount\nINV1002,2500", w.Body.String())
}

func TestInvoiceHandlerExportFailure(t *testing.T) {
	exports := &exporterStub{err: appErrors.Clone(appErrors.ErrExportFailed, "could not export fee invoices")}
	h := NewInvoiceHandler(&invoiceServiceStub{}, exports)

	c, w := newGinContext(http.MethodGet, "/invoices/export", nil)
	withClaims(c, principalClaims)
	h.Export(c)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	env := decode(t, w)
	assert.Equal(t, "EXPORT_FAILED", env.Error.Code)
	assert.Equal(t, "could not export fee invoices", env.Error.Message)
}

func TestInvoiceHandlerPay(t *testing.T) {
	h := NewInvoiceHandler(&invoiceServiceStub{}, &exporterStub{})

	c, w := newGinContext(http.MethodPost, "/invoices/INV1002/pay", nil)
	c.AddParam("id", "INV1002")
	withClaims(c, parentClaims)
	h.Pay(c)

	require.Equal(t, http.StatusOK, w.Code)
	var inv models.Invoice
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &inv))
	assert.Equal(t, models.InvoiceStatusPaid, inv.Status)
}

func TestInvoiceHandlerPayConflict(t *testing.T) {
	h := NewInvoiceHandler(&invoiceServiceStub{payErr: appErrors.Clone(appErrors.ErrConflict, "invoice already paid")}, &exporterStub{})

	c, w := newGinContext(http.MethodPost, "/invoices/INV1001/pay", nil)
	c.AddParam("id", "INV1001")
	withClaims(c, parentClaims)
	h.Pay(c)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "invoice already paid", decode(t, w).Error.Message)
}

func TestInvoiceHandlerSummaryReportsCacheHit(t *testing.T) {
	svc := &invoiceServiceStub{summary: &models.FeeSummary{SchoolID: "school-1", Outstanding: 4000}, hit: true}
	h := NewInvoiceHandler(svc, &exporterStub{})

	c, w := newGinContext(http.MethodGet, "/invoices/summary", nil)
	withClaims(c, principalClaims)
	middleware.WithResponseMeta()(c)
	h.Summary(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "HIT", w.Header().Get(middleware.CacheHeader))
	env := decode(t, w)
	assert.Equal(t, true, env.Meta["cache_hit"])
	assert.Contains(t, env.Meta, "processing_time_ms")
}
