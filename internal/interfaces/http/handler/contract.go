package handler

import (
	"context"

	appcontract "github.com/condoerp/backend/internal/application/contract"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContractHandler handles condominium fee contract endpoints
type ContractHandler struct {
	BaseHandler
	service *appcontract.ContractService
}

// NewContractHandler creates a new ContractHandler
func NewContractHandler(service *appcontract.ContractService) *ContractHandler {
	return &ContractHandler{service: service}
}

// Create godoc
// @Summary      Create a fee contract
// @Description  Creates a draft contract and builds its installment schedule
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Param        X-Company-ID header string false "Company ID (optional for dev)"
// @Param        request body contract.CreateContractRequest true "Contract to create"
// @Success      201 {object} dto.Response{data=contract.ContractResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /contracts [post]
func (h *ContractHandler) Create(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	var req appcontract.CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.Create(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, resp)
}

// GetByID godoc
// @Summary      Get contract by ID
// @Description  Retrieve a contract with its installment schedule
// @Tags         contracts
// @Produce      json
// @Param        X-Company-ID header string false "Company ID (optional for dev)"
// @Param        id path string true "Contract ID" format(uuid)
// @Success      200 {object} dto.Response{data=contract.ContractResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /contracts/{id} [get]
func (h *ContractHandler) GetByID(c *gin.Context) {
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

	resp, err := h.service.Get(c.Request.Context(), companyID, contractID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// List godoc
// @Summary      List contracts
// @Description  List contracts with filtering and pagination
// @Tags         contracts
// @Produce      json
// @Param        X-Company-ID header string false "Company ID (optional for dev)"
// @Param        search query string false "Search by contract name, partner or apartment"
// @Param        state query string false "Filter by state" Enums(DRAFT, CONFIRMED, DONE, CANCELLED)
// @Param        partner_id query string false "Filter by partner" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]contract.ContractResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /contracts [get]
func (h *ContractHandler) List(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	var filter appcontract.ContractListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.List(c.Request.Context(), companyID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Update godoc
// @Summary      Update a draft contract
// @Description  Updates contract terms and rebuilds the schedule. Draft contracts only.
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Param        X-Company-ID header string false "Company ID (optional for dev)"
// @Param        id path string true "Contract ID" format(uuid)
// @Param        request body contract.UpdateContractRequest true "Fields to update"
// @Success      200 {object} dto.Response{data=contract.ContractResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /contracts/{id} [put]
func (h *ContractHandler) Update(c *gin.Context) {
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

	var req appcontract.UpdateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.Update(c.Request.Context(), companyID, contractID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// BuildSchedule godoc
// @Summary      Rebuild the installment schedule
// @Description  Recomputes the schedule from the current contract terms. Refused once payments exist.
// @Tags         contracts
// @Produce      json
// @Param        X-Company-ID header string false "Company ID (optional for dev)"
// @Param        id path string true "Contract ID" format(uuid)
// @Success      200 {object} dto.Response{data=contract.ContractResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /contracts/{id}/schedule [post]
func (h *ContractHandler) BuildSchedule(c *gin.Context) {
	h.transition(c, h.service.RebuildSchedule)
}

// Confirm godoc
// @Summary      Confirm a contract
// @Description  Moves a draft contract to CONFIRMED and posts its initial invoice
// @Tags         contracts
// @Produce      json
// @Param        X-Company-ID header string false "Company ID (optional for dev)"
// @Param        id path string true "Contract ID" format(uuid)
// @Success      200 {object} dto.Response{data=contract.ContractResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /contracts/{id}/confirm [post]
func (h *ContractHandler) Confirm(c *gin.Context) {
	h.transition(c, h.service.Confirm)
}

// MarkDone godoc
// @Summary      Mark a contract as done
// @Description  Completes a fully paid contract
// @Tags         contracts
// @Produce      json
// @Param        X-Company-ID header string false "Company ID (optional for dev)"
// @Param        id path string true "Contract ID" format(uuid)
// @Success      200 {object} dto.Response{data=contract.ContractResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /contracts/{id}/done [post]
func (h *ContractHandler) MarkDone(c *gin.Context) {
	h.transition(c, h.service.MarkDone)
}

// Cancel godoc
// @Summary      Cancel a contract
// @Description  Cancels a contract and voids its open invoices
// @Tags         contracts
// @Produce      json
// @Param        X-Company-ID header string false "Company ID (optional for dev)"
// @Param        id path string true "Contract ID" format(uuid)
// @Success      200 {object} dto.Response{data=contract.ContractResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /contracts/{id}/cancel [post]
func (h *ContractHandler) Cancel(c *gin.Context) {
	h.transition(c, h.service.Cancel)
}

// ResetToDraft godoc
// @Summary      Reset a contract to draft
// @Description  Returns a cancelled contract to DRAFT for re-editing
// @Tags         contracts
// @Produce      json
// @Param        X-Company-ID header string false "Company ID (optional for dev)"
// @Param        id path string true "Contract ID" format(uuid)
// @Success      200 {object} dto.Response{data=contract.ContractResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /contracts/{id}/reset [post]
func (h *ContractHandler) ResetToDraft(c *gin.Context) {
	h.transition(c, h.service.ResetToDraft)
}

// Delete godoc
// @Summary      Delete a contract
// @Description  Deletes a draft or cancelled contract
// @Tags         contracts
// @Produce      json
// @Param        X-Company-ID header string false "Company ID (optional for dev)"
// @Param        id path string true "Contract ID" format(uuid)
// @Success      204 "No Content"
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /contracts/{id} [delete]
func (h *ContractHandler) Delete(c *gin.Context) {
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

	if err := h.service.Delete(c.Request.Context(), companyID, contractID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// transition runs a lifecycle operation identified by the contract ID path param
func (h *ContractHandler) transition(
	c *gin.Context,
	op func(ctx context.Context, companyID, contractID uuid.UUID) (*appcontract.ContractResponse, error),
) {
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

	resp, err := op(c.Request.Context(), companyID, contractID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}
