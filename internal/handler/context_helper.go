package handler

import (
	"context"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campusconnect-api/internal/middleware"
	"github.com/noah-isme/campusconnect-api/internal/models"
	appErrors "github.com/noah-isme/campusconnect-api/pkg/errors"
	"github.com/noah-isme/campusconnect-api/pkg/export"
	"github.com/noah-isme/campusconnect-api/pkg/listing"
	"github.com/noah-isme/campusconnect-api/pkg/response"
)

// exporter renders a registered dataset for the caller.
type exporter interface {
	Download(ctx context.Context, t models.ReportType, scope models.Scope, filters url.Values, format models.ReportFormat) (export.Attachment, error)
}

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, ok := middleware.Claims(c)
	if !ok {
		return nil
	}
	return claims
}

// scopeFromContext writes 401 and returns false when the request carries no claims.
func scopeFromContext(c *gin.Context) (models.Scope, bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return models.Scope{}, false
	}
	return claims.Scope(), true
}

// listQuery parses sort and paging; the service supplies the default sort.
func listQuery(c *gin.Context) (listing.Query, bool) {
	q, err := listing.ParseQuery(c.Request.URL.Query(), listing.SortState{})
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error()))
		return listing.Query{}, false
	}
	return q, true
}

func writePage[T any](c *gin.Context, page listing.Result[T]) {
	items := page.Items
	if items == nil {
		items = []T{}
	}
	response.List(c, items, &response.Pagination{
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalCount: page.Total,
	}, page.Empty, map[string]interface{}{
		"sort":  page.Sort.Key,
		"order": page.Sort.Direction(),
	})
}

func exportFormat(c *gin.Context) models.ReportFormat {
	format := strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", string(models.ReportFormatCSV))))
	return models.ReportFormat(format)
}

// download renders dataset t under the caller's scope using the request's query as filters.
func download(c *gin.Context, exports exporter, t models.ReportType) {
	scope, ok := scopeFromContext(c)
	if !ok {
		return
	}
	att, err := exports.Download(c.Request.Context(), t, scope, c.Request.URL.Query(), exportFormat(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := att.WriteTo(c.Writer); err != nil {
		_ = c.Error(err)
	}
}

func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return false
	}
	return true
}
