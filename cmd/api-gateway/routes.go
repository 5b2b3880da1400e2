package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/campusconnect-api/internal/handler"
	"github.com/noah-isme/campusconnect-api/internal/middleware"
	"github.com/noah-isme/campusconnect-api/internal/models"
	"github.com/noah-isme/campusconnect-api/internal/service"
	"github.com/noah-isme/campusconnect-api/pkg/config"
)

type routeDeps struct {
	services  *service.Services
	exports   *service.ExportService
	reports   *service.ReportService
	assistant *service.AssistantService
	verifier  *service.TokenVerifier
	metrics   *handler.MetricsHandler
	logger    *zap.Logger
	reporting bool
}

var (
	allRoles     = []models.UserRole{models.RoleSuperAdmin, models.RolePrincipal, models.RoleTeacher, models.RoleStudent, models.RoleParent}
	payerRoles   = []models.UserRole{models.RoleSuperAdmin, models.RolePrincipal, models.RoleParent}
	teachingRole = []models.UserRole{models.RoleSuperAdmin, models.RolePrincipal, models.RoleTeacher}
	learnerRoles = []models.UserRole{models.RoleStudent, models.RoleParent, models.RoleTeacher}
)

func registerRoutes(r *gin.Engine, cfg *config.Config, d routeDeps) {
	r.GET("/health", d.metrics.Health)
	r.GET("/ready", d.metrics.Ready)
	r.GET("/metrics", d.metrics.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	svcs := d.services
	invoices := handler.NewInvoiceHandler(svcs.Invoices, d.exports)
	attendance := handler.NewAttendanceHandler(svcs.Attendance, d.exports)
	salaries := handler.NewSalaryHandler(svcs.Salaries, d.exports)
	requests := handler.NewRequestHandler(svcs.Requests, svcs.History, d.exports)
	catalog := handler.NewCatalogHandler(svcs.Hostel, svcs.Homework, d.exports)
	performance := handler.NewPerformanceHandler(svcs.Performance, d.exports)
	exports := handler.NewExportHandler(d.exports, svcs.Datasets.Types())
	reports := handler.NewReportHandler(d.reports)
	assistant := handler.NewAssistantHandler(d.assistant)

	api := r.Group(cfg.APIPrefix)
	if d.reporting {
		api.GET("/export/:token", reports.DownloadReport)
	}

	secured := api.Group("")
	secured.Use(middleware.JWT(d.verifier))
	audit := func(action, resource string) gin.HandlerFunc {
		return middleware.Audit(d.logger, action, resource)
	}
	everyone := middleware.RequireRoles(allRoles...)
	leadership := middleware.RequireRoles(service.LeadershipRoles...)
	staff := middleware.RequireRoles(service.StaffRoles...)

	fees := secured.Group("/invoices", everyone)
	fees.GET("", invoices.List)
	fees.GET("/export", invoices.Export)
	fees.GET("/summary", invoices.Summary)
	fees.POST("/:id/pay", middleware.RequireRoles(payerRoles...), audit("pay", "invoice"), invoices.Pay)

	att := secured.Group("/attendance", everyone)
	att.GET("", attendance.List)
	att.GET("/export", attendance.Export)
	att.GET("/summary", attendance.Summary)

	payroll := secured.Group("/salaries", leadership)
	payroll.GET("", salaries.List)
	payroll.GET("/export", salaries.Export)
	payroll.POST("/:id/pay", audit("pay", "salary"), salaries.Pay)

	secured.POST("/requests", middleware.RequireRoles(models.RoleParent), audit("submit", "parent_request"), requests.Submit)
	queue := secured.Group("/requests", leadership)
	queue.GET("", requests.List)
	queue.GET("/export", requests.Export)
	queue.POST("/:id/act", audit("act", "parent_request"), requests.Act)
	queue.GET("/history", requests.History)
	queue.GET("/history/export", requests.ExportHistory)
	queue.PATCH("/history/:id", audit("edit_note", "request_history"), requests.EditNote)
	queue.POST("/history/:id/unlock", audit("unlock", "request_history"), requests.Unlock)

	secured.GET("/hostel", staff, catalog.Hostel)
	secured.GET("/hostel/export", staff, catalog.ExportHostel)
	secured.GET("/homework", everyone, catalog.Homework)
	secured.GET("/homework/export", everyone, catalog.ExportHomework)

	perf := secured.Group("/performance", leadership)
	perf.GET("", performance.List)
	perf.GET("/rankings", performance.Rankings)
	perf.GET("/compare", performance.Compare)
	perf.GET("/export", performance.ExportGrowth)
	perf.GET("/compare/export", performance.ExportComparison)

	secured.GET("/exports", everyone, exports.Types)
	secured.GET("/exports/:type", everyone, exports.Download)

	if d.reporting {
		rep := secured.Group("/reports", everyone)
		rep.POST("/generate", reports.GenerateReport)
		rep.GET("/status/:id", reports.ReportStatus)
	}

	ai := secured.Group("/ai")
	ai.POST("/quiz", middleware.RequireRoles(teachingRole...), assistant.Quiz)
	ai.POST("/lesson-plan", middleware.RequireRoles(teachingRole...), assistant.LessonPlan)
	ai.POST("/doubt", middleware.RequireRoles(learnerRoles...), assistant.DoubtSolver)
	ai.POST("/late-fees", leadership, assistant.LateFees)
	ai.POST("/billing", middleware.RequireRoles(models.RoleSuperAdmin), assistant.Billing)
	ai.POST("/ocr", everyone, assistant.ExtractText)
	ai.POST("/voice", everyone, assistant.VoiceCommand)

	secured.GET("/metrics/summary", leadership, d.metrics.Snapshot)
}
