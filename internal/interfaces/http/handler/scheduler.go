package handler

import (
	"errors"

	"github.com/condoerp/backend/internal/infrastructure/scheduler"
	"github.com/gin-gonic/gin"
)

// SchedulerHandler exposes the billing cron scheduler over HTTP
type SchedulerHandler struct {
	BaseHandler
	cron *scheduler.BillingCronScheduler
}

// NewSchedulerHandler creates a new SchedulerHandler
func NewSchedulerHandler(cron *scheduler.BillingCronScheduler) *SchedulerHandler {
	return &SchedulerHandler{cron: cron}
}

// Status godoc
// @Summary      Scheduler status
// @Description  Returns the cron scheduler state and last run times
// @Tags         scheduler
// @Produce      json
// @Success      200 {object} dto.Response{data=map[string]any}
// @Router       /scheduler/status [get]
func (h *SchedulerHandler) Status(c *gin.Context) {
	if h.cron == nil {
		h.Success(c, gin.H{"enabled": false})
		return
	}
	h.Success(c, h.cron.GetStatus())
}

// Trigger godoc
// @Summary      Trigger a scheduled job
// @Description  Queues an immediate run of a billing job for all active companies
// @Tags         scheduler
// @Produce      json
// @Param        type path string true "Job type" Enums(LATE_FEE_ACCRUAL, DUE_REMINDER)
// @Success      202 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /scheduler/jobs/{type}/trigger [post]
func (h *SchedulerHandler) Trigger(c *gin.Context) {
	if h.cron == nil {
		h.Conflict(c, "Scheduler is not enabled")
		return
	}

	jobType := scheduler.JobType(c.Param("type"))
	if err := h.cron.TriggerManualRun(c.Request.Context(), jobType); err != nil {
		switch {
		case errors.Is(err, scheduler.ErrInvalidJobType):
			h.BadRequest(c, "Unknown job type")
		case errors.Is(err, scheduler.ErrSchedulerNotRunning):
			h.Conflict(c, "Scheduler is not running")
		default:
			h.InternalError(c, "Failed to trigger job")
		}
		return
	}

	h.Accepted(c, gin.H{"job_type": string(jobType)})
}
