package handler

import (
	"time"

	docapp "github.com/erp/ledgercore/internal/application/document"
	"github.com/gin-gonic/gin"
)

const defaultRegistryPageSize = 50

// RegistryHandler exposes the transaction registry read side
type RegistryHandler struct {
	BaseHandler
	documents *docapp.DocumentService
}

// NewRegistryHandler creates a new RegistryHandler
func NewRegistryHandler(documents *docapp.DocumentService) *RegistryHandler {
	return &RegistryHandler{documents: documents}
}

// RegistryQuery holds the query parameters of the registry endpoints
type RegistryQuery struct {
	Type        string     `form:"type"`
	HeaderID    string     `form:"header_id" binding:"omitempty,uuid"`
	WarehouseID string     `form:"warehouse_id" binding:"omitempty,uuid"`
	From        *time.Time `form:"from" time_format:"2006-01-02"`
	To          *time.Time `form:"to" time_format:"2006-01-02"`
	Page        int        `form:"page" binding:"min=0"`
	PageSize    int        `form:"page_size" binding:"min=0,max=500"`
	OrderBy     string     `form:"order_by"`
	OrderDir    string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

func (q RegistryQuery) toFilter() docapp.RegistryListFilter {
	return docapp.RegistryListFilter{
		Type:        q.Type,
		HeaderID:    optionalUUID(q.HeaderID),
		WarehouseID: optionalUUID(q.WarehouseID),
		From:        q.From,
		To:          q.To,
		Page:        q.Page,
		PageSize:    q.PageSize,
		OrderBy:     q.OrderBy,
		OrderDir:    q.OrderDir,
	}
}

// List godoc
// @Summary  List transaction registry rows
// @Tags     transaction-registry
// @Produce  json
// @Param    type         query string false "Transaction type"
// @Param    warehouse_id query string false "Warehouse ID"
// @Success  200 {object} dto.Response
// @Router   /transaction-registry [get]
func (h *RegistryHandler) List(c *gin.Context) {
	var q RegistryQuery
	if !h.bindQuery(c, &q) {
		return
	}
	q.Page, q.PageSize = pageOrDefault(q.Page, q.PageSize, defaultRegistryPageSize)

	rows, total, err := h.documents.ListRegistry(c.Request.Context(), q.toFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, rows, total, q.Page, q.PageSize)
}

// Summary godoc
// @Summary  Totals of registry rows per transaction type
// @Tags     transaction-registry
// @Produce  json
// @Success  200 {object} dto.Response
// @Router   /transaction-registry/summary [get]
func (h *RegistryHandler) Summary(c *gin.Context) {
	var q RegistryQuery
	if !h.bindQuery(c, &q) {
		return
	}

	totals, err := h.documents.SummarizeRegistry(c.Request.Context(), q.toFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, totals)
}
