package handler

import (
	"time"

	appcontract "github.com/condoerp/backend/internal/application/contract"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LateFeeHandler handles late fee endpoints
type LateFeeHandler struct {
	BaseHandler
	service *appcontract.LateFeeService
}

// NewLateFeeHandler creates a new LateFeeHandler
func NewLateFeeHandler(service *appcontract.LateFeeService) *LateFeeHandler {
	return &LateFeeHandler{service: service}
}

// ApplyManualFee godoc
// @Summary      Apply a manual late fee
// @Description  Charges a caller-specified fee against one installment line
// @Tags         late-fees
// @Accept       json
// @Produce      json
// @Param        X-Company-ID header string false "Company ID (optional for dev)"
// @Param        id path string true "Contract ID" format(uuid)
// @Param        request body contract.ManualLateFeeRequest true "Fee to apply"
// @Success      201 {object} dto.Response{data=contract.LateFeeAccrualResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /contracts/{id}/late-fees [post]
func (h *LateFeeHandler) ApplyManualFee(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contract ID format")
		return
	}

	var req appcontract.ManualLateFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.ApplyManualFee(c.Request.Context(), companyID, contractID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, resp)
}

// RunAccrual godoc
// @Summary      Run late fee accrual
// @Description  Accrues monthly late fees across the company's confirmed contracts
// @Tags         late-fees
// @Produce      json
// @Param        X-Company-ID header string false "Company ID (optional for dev)"
// @Param        as_of query string false "Accrual cutoff date (RFC 3339), defaults to now"
// @Success      200 {object} dto.Response{data=contract.AccrualRunResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /late-fees/accrual-runs [post]
func (h *LateFeeHandler) RunAccrual(c *gin.Context) {
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

	result, err := h.service.RunAccrual(c.Request.Context(), companyID, asOf)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// parseAsOf reads the optional as_of query parameter, defaulting to now
func parseAsOf(c *gin.Context) (time.Time, bool) {
	raw := c.Query("as_of")
	if raw == "" {
		return time.Now().UTC(), true
	}
	asOf, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return asOf, true
}
