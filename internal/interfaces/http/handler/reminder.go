package handler

import (
	appcontract "github.com/condoerp/backend/internal/application/contract"
	"github.com/gin-gonic/gin"
)

// ReminderHandler handles due-date reminder endpoints
type ReminderHandler struct {
	BaseHandler
	service *appcontract.ReminderService
}

// NewReminderHandler creates a new ReminderHandler
func NewReminderHandler(service *appcontract.ReminderService) *ReminderHandler {
	return &ReminderHandler{service: service}
}

// Run godoc
// @Summary      Run due-date reminders
// @Description  Sends upcoming installment reminders for the company's confirmed contracts
// @Tags         reminders
// @Produce      json
// @Param        X-Company-ID header string false "Company ID (optional for dev)"
// @Param        as_of query string false "Reference date (RFC 3339), defaults to now"
// @Success      200 {object} dto.Response{data=contract.ReminderRunResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /reminders/runs [post]
func (h *ReminderHandler) Run(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	asOf, ok := parseAsOf(c)
	if !ok {
		h.BadRequest(c, "Invalid as_of date, expected RFC 3339")
		return
	}

	result, err := h.service.RunReminders(c.Request.Context(), companyID, asOf)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}
