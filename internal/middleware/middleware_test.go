package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/campusconnect-api/internal/models"
	"github.com/noah-isme/campusconnect-api/internal/service"
	appErrors "github.com/noah-isme/campusconnect-api/pkg/errors"
	"github.com/noah-isme/campusconnect-api/pkg/logger"
)

type stubVerifier map[string]*models.JWTClaims

func (s stubVerifier) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := s[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

var verifier = stubVerifier{
	"principal": {UserID: "u-1", Role: models.RolePrincipal, SchoolID: "school-1"},
	"parent":    {UserID: "u-2", Role: models.RoleParent, SchoolID: "school-1", StudentIDs: []string{"STU1"}},
}

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/things/42", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error.Code
}

func TestJWTAndRequireRoles(t *testing.T) {
	r := gin.New()
	r.POST("/things/:id", JWT(verifier), RequireRoles(models.RolePrincipal, models.RoleSuperAdmin), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(logger.SchoolIDKey))
	})

	w := serve(r, "principal")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "school-1", w.Body.String())

	w = serve(r, "parent")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, w))

	w = serve(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, "forged")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, w))
}

func TestJWTRejectsNonBearerScheme(t *testing.T) {
	r := gin.New()
	r.POST("/things/:id", JWT(verifier), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/things/42", nil)
	req.Header.Set("Authorization", "Basic principal")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRolesWithoutJWT(t *testing.T) {
	r := gin.New()
	r.POST("/things/:id", RequireRoles(models.RoleParent), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusUnauthorized, serve(r, "parent").Code)
}

func TestAuditLogsSuccessfulRequestsOnly(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.POST("/things/:id", JWT(verifier), Audit(zap.New(core), "pay", "invoice"), func(c *gin.Context) {
		if c.Param("id") == "bad" {
			c.Status(http.StatusConflict)
			return
		}
		c.Status(http.StatusOK)
	})

	serve(r, "principal")
	req := httptest.NewRequest(http.MethodPost, "/things/bad", nil)
	req.Header.Set("Authorization", "Bearer principal")
	r.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("audit").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "pay", fields["action"])
	assert.Equal(t, "42", fields["resource_id"])
	assert.Equal(t, "u-1", fields["user_id"])
}

func TestResponseMetaRecordsCacheHit(t *testing.T) {
	r := gin.New()
	r.Use(WithResponseMeta())
	r.POST("/things/:id", func(c *gin.Context) {
		SetCacheHit(c, true)
		c.JSON(http.StatusOK, ExtractMeta(c))
	})

	w := serve(r, "")
	assert.Equal(t, "HIT", w.Header().Get(CacheHeader))
	var meta map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &meta))
	assert.Equal(t, true, meta["cache_hit"])
	assert.Contains(t, meta, "processing_time_ms")
	assert.NotContains(t, meta, "started_at")
}

func TestMetricsLabelsByRouteTemplate(t *testing.T) {
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics, "/metrics"))
	r.GET("/invoices/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/invoices/INV1", "/invoices/INV2", "/metrics", "/wp-admin"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	families, err := metrics.Registry().Gather()
	require.NoError(t, err)
	paths := map[string]float64{}
	for _, family := range families {
		if family.GetName() != "http_requests_total" {
			continue
		}
		for _, m := range family.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "path" {
					paths[label.GetValue()] += m.GetCounter().GetValue()
				}
			}
		}
	}
	assert.Equal(t, map[string]float64{"/invoices/:id": 2, "unmatched": 1}, paths)
}
