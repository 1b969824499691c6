package handler

import (
	appcontract "github.com/condoerp/backend/internal/application/contract"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentHandler handles payment submission endpoints
type PaymentHandler struct {
	BaseHandler
	service *appcontract.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(service *appcontract.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// Submit godoc
// @Summary      Submit a payment
// @Description  Records a payment and allocates it oldest installment first, fees before principal
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        X-Company-ID header string false "Company ID (optional for dev)"
// @Param        id path string true "Contract ID" format(uuid)
// @Param        request body contract.SubmitPaymentRequest true "Payment to submit"
// @Success      201 {object} dto.Response{data=contract.PaymentResultResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /contracts/{id}/payments [post]
func (h *PaymentHandler) Submit(c *gin.Context) {
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

	var req appcontract.SubmitPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.SubmitPayment(c.Request.Context(), companyID, contractID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	// A replayed idempotency key returns the current state instead of a new payment
	if result.Duplicate {
		h.Success(c, result)
		return
	}

	h.Created(c, result)
}

// SubmitManual godoc
// @Summary      Submit a manual payment
// @Description  Records a payment with caller-chosen line allocations
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        X-Company-ID header string false "Company ID (optional for dev)"
// @Param        id path string true "Contract ID" format(uuid)
// @Param        request body contract.SubmitManualPaymentRequest true "Manual allocations"
// @Success      201 {object} dto.Response{data=contract.PaymentResultResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /contracts/{id}/payments/manual [post]
func (h *PaymentHandler) SubmitManual(c *gin.Context) {
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

	var req appcontract.SubmitManualPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.SubmitManualPayment(c.Request.Context(), companyID, contractID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	if result.Duplicate {
		h.Success(c, result)
		return
	}

	h.Created(c, result)
}
