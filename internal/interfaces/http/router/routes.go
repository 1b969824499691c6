package router

import (
	"github.com/condoerp/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// ContractRoutes registers contract lifecycle, payment and per-contract
// reporting endpoints
type ContractRoutes struct {
	Contracts *handler.ContractHandler
	Payments  *handler.PaymentHandler
	LateFees  *handler.LateFeeHandler
	Reports   *handler.ReportHandler
}

// RegisterRoutes implements RouteRegistrar
func (r *ContractRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	contracts := rg.Group("/contracts")
	{
		contracts.POST("", r.Contracts.Create)
		contracts.GET("", r.Contracts.List)
		contracts.GET("/:id", r.Contracts.GetByID)
		contracts.PUT("/:id", r.Contracts.Update)
		contracts.DELETE("/:id", r.Contracts.Delete)

		contracts.POST("/:id/schedule", r.Contracts.BuildSchedule)
		contracts.POST("/:id/confirm", r.Contracts.Confirm)
		contracts.POST("/:id/done", r.Contracts.MarkDone)
		contracts.POST("/:id/cancel", r.Contracts.Cancel)
		contracts.POST("/:id/reset", r.Contracts.ResetToDraft)

		contracts.POST("/:id/payments", r.Payments.Submit)
		contracts.POST("/:id/payments/manual", r.Payments.SubmitManual)
		contracts.POST("/:id/late-fees", r.LateFees.ApplyManualFee)

		contracts.GET("/:id/statement", r.Reports.Statement)
		contracts.GET("/:id/charges", r.Reports.ChargeHistory)
	}
}

// BillingRoutes registers company-wide billing run and report endpoints
type BillingRoutes struct {
	LateFees  *handler.LateFeeHandler
	Reminders *handler.ReminderHandler
	Reports   *handler.ReportHandler
}

// RegisterRoutes implements RouteRegistrar
func (r *BillingRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/late-fees/accrual-runs", r.LateFees.RunAccrual)
	rg.POST("/reminders/runs", r.Reminders.Run)
	rg.GET("/reports/charges", r.Reports.ChargeReport)
}

// SchedulerRoutes registers cron scheduler inspection endpoints
type SchedulerRoutes struct {
	Scheduler *handler.SchedulerHandler
}

// RegisterRoutes implements RouteRegistrar
func (r *SchedulerRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	scheduler := rg.Group("/scheduler")
	{
		scheduler.GET("/status", r.Scheduler.Status)
		scheduler.POST("/jobs/:type/trigger", r.Scheduler.Trigger)
	}
}

// SystemRoutes registers system info endpoints
type SystemRoutes struct {
	System *handler.SystemHandler
}

// RegisterRoutes implements RouteRegistrar
func (r *SystemRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	system := rg.Group("/system")
	{
		system.GET("/info", r.System.GetSystemInfo)
		system.GET("/ping", r.System.Ping)
	}
}
