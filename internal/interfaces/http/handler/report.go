package handler

import (
	"time"

	appcontract "github.com/condoerp/backend/internal/application/contract"
	"github.com/condoerp/backend/internal/domain/contract"
	"github.com/condoerp/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReportHandler handles charge reporting endpoints
type ReportHandler struct {
	BaseHandler
	service *appcontract.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(service *appcontract.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// ChargeReport godoc
// @Summary      Charge report
// @Description  Aggregates accrued charges per contract over an optional date range
// @Tags         reports
// @Produce      json
// @Param        X-Company-ID header string false "Company ID (optional for dev)"
// @Param        from query string false "Range start (YYYY-MM-DD)"
// @Param        to query string false "Range end (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=contract.ChargeReportResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /reports/charges [get]
func (h *ReportHandler) ChargeReport(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	from, ok := parseDateQuery(c, "from")
	if !ok {
		h.BadRequest(c, "Invalid from date, expected YYYY-MM-DD")
		return
	}
	to, ok := parseDateQuery(c, "to")
	if !ok {
		h.BadRequest(c, "Invalid to date, expected YYYY-MM-DD")
		return
	}

	report, err := h.service.ChargeReport(c.Request.Context(), companyID, from, to)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, report)
}

// Statement godoc
// @Summary      Contract statement
// @Description  Returns the contract with its invoices and payments
// @Tags         reports
// @Produce      json
// @Param        X-Company-ID header string false "Company ID (optional for dev)"
// @Param        id path string true "Contract ID" format(uuid)
// @Success      200 {object} dto.Response{data=contract.ContractStatementResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /contracts/{id}/statement [get]
func (h *ReportHandler) Statement(c *gin.Context) {
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

	statement, err := h.service.Statement(c.Request.Context(), companyID, contractID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, statement)
}

// ChargeHistory godoc
// @Summary      Contract charge history
// @Description  Lists the accrued charge records of a contract, oldest first
// @Tags         reports
// @Produce      json
// @Param        X-Company-ID header string false "Company ID (optional for dev)"
// @Param        id path string true "Contract ID" format(uuid)
// @Param        line_id query string false "Filter by installment line" format(uuid)
// @Param        from query string false "Range start (YYYY-MM-DD)"
// @Param        to query string false "Range end (YYYY-MM-DD)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]contract.ChargeRecordResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /contracts/{id}/charges [get]
func (h *ReportHandler) ChargeHistory(c *gin.Context) {
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

	filter := contract.ChargeRecordFilter{Filter: shared.DefaultFilter()}

	if raw := c.Query("line_id"); raw != "" {
		lineID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid line ID format")
			return
		}
		filter.LineID = &lineID
	}

	from, ok := parseDateQuery(c, "from")
	if !ok {
		h.BadRequest(c, "Invalid from date, expected YYYY-MM-DD")
		return
	}
	filter.From = from

	to, ok := parseDateQuery(c, "to")
	if !ok {
		h.BadRequest(c, "Invalid to date, expected YYYY-MM-DD")
		return
	}
	filter.To = to

	var page struct {
		Page     int `form:"page" binding:"min=0"`
		PageSize int `form:"page_size" binding:"min=0,max=100"`
	}
	if err := c.ShouldBindQuery(&page); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if page.Page > 0 {
		filter.Page = page.Page
	}
	if page.PageSize > 0 {
		filter.PageSize = page.PageSize
	}

	records, err := h.service.ChargeHistory(c.Request.Context(), companyID, contractID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, records)
}

// parseDateQuery reads an optional YYYY-MM-DD query parameter
func parseDateQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, false
	}
	return &d, true
}
