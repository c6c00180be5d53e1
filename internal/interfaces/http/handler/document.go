package handler

import (
	"time"

	docapp "github.com/erp/ledgercore/internal/application/document"
	"github.com/gin-gonic/gin"
)

// DocumentHandler handles document lifecycle endpoints
type DocumentHandler struct {
	BaseHandler
	documents *docapp.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documents *docapp.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// DocumentQuery holds the query parameters of GET /documents
type DocumentQuery struct {
	Status       string     `form:"status"`
	DefinitionID string     `form:"definition_id" binding:"omitempty,uuid"`
	WarehouseID  string     `form:"warehouse_id" binding:"omitempty,uuid"`
	ThirdPartyID string     `form:"third_party_id" binding:"omitempty,uuid"`
	From         *time.Time `form:"from" time_format:"2006-01-02"`
	To           *time.Time `form:"to" time_format:"2006-01-02"`
	Page         int        `form:"page" binding:"min=0"`
	PageSize     int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy      string     `form:"order_by"`
	OrderDir     string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// Create godoc
// @Summary  Create a draft document; its number is issued atomically
// @Tags     documents
// @Accept   json
// @Produce  json
// @Param    request body docapp.CreateDocumentRequest true "Document"
// @Success  201 {object} dto.Response
// @Failure  400 {object} dto.Response
// @Failure  409 {object} dto.Response
// @Router   /documents [post]
func (h *DocumentHandler) Create(c *gin.Context) {
	createdBy, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authenticated user required")
		return
	}
	var req docapp.CreateDocumentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	doc, err := h.documents.Create(c.Request.Context(), createdBy, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, doc)
}

// Get godoc
// @Summary  Get a document with its lines
// @Tags     documents
// @Produce  json
// @Param    id path string true "Document ID"
// @Success  200 {object} dto.Response
// @Failure  404 {object} dto.Response
// @Router   /documents/{id} [get]
func (h *DocumentHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	doc, err := h.documents.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// GetByNumber godoc
// @Summary  Get a document by its number
// @Tags     documents
// @Produce  json
// @Param    number path string true "Document number"
// @Success  200 {object} dto.Response
// @Failure  404 {object} dto.Response
// @Router   /documents/by-number/{number} [get]
func (h *DocumentHandler) GetByNumber(c *gin.Context) {
	doc, err := h.documents.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// List godoc
// @Summary  List documents
// @Tags     documents
// @Produce  json
// @Param    status        query string false "DRAFT, ACTIVE, CANCELLED or REFUNDED"
// @Param    definition_id query string false "Definition ID"
// @Param    from          query string false "From date (YYYY-MM-DD)"
// @Param    to            query string false "To date (YYYY-MM-DD)"
// @Success  200 {object} dto.Response
// @Router   /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	var q DocumentQuery
	if !h.bindQuery(c, &q) {
		return
	}
	page, pageSize := pageOrDefault(q.Page, q.PageSize, defaultPageSize)

	docs, total, err := h.documents.List(c.Request.Context(), docapp.DocumentListFilter{
		Status:       q.Status,
		DefinitionID: optionalUUID(q.DefinitionID),
		WarehouseID:  optionalUUID(q.WarehouseID),
		ThirdPartyID: optionalUUID(q.ThirdPartyID),
		From:         q.From,
		To:           q.To,
		Page:         page,
		PageSize:     pageSize,
		OrderBy:      q.OrderBy,
		OrderDir:     q.OrderDir,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, docs, total, page, pageSize)
}

// AddLine godoc
// @Summary  Append a line to a draft document
// @Tags     documents
// @Accept   json
// @Produce  json
// @Param    id      path string             true "Document ID"
// @Param    request body docapp.LineRequest true "Line"
// @Success  200 {object} dto.Response
// @Failure  422 {object} dto.Response
// @Router   /documents/{id}/lines [post]
func (h *DocumentHandler) AddLine(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req docapp.LineRequest
	if !h.bindJSON(c, &req) {
		return
	}

	doc, err := h.documents.AddLine(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// Activate godoc
// @Summary  Activate a draft document and post it to the transaction registry
// @Tags     documents
// @Produce  json
// @Param    id path string true "Document ID"
// @Success  200 {object} dto.Response
// @Failure  409 {object} dto.Response
// @Failure  422 {object} dto.Response
// @Router   /documents/{id}/activate [post]
func (h *DocumentHandler) Activate(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	doc, err := h.documents.Activate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// Cancel godoc
// @Summary  Cancel a draft document
// @Tags     documents
// @Accept   json
// @Produce  json
// @Param    id      path string                       true  "Document ID"
// @Param    request body docapp.CancelDocumentRequest false "Reason"
// @Success  200 {object} dto.Response
// @Failure  422 {object} dto.Response
// @Router   /documents/{id}/cancel [post]
func (h *DocumentHandler) Cancel(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req docapp.CancelDocumentRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}

	doc, err := h.documents.Cancel(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// RebuildRegistry godoc
// @Summary  Replay the registry rows of an active document
// @Tags     documents
// @Produce  json
// @Param    id path string true "Document ID"
// @Success  200 {object} dto.Response
// @Failure  422 {object} dto.Response
// @Router   /documents/{id}/rebuild-registry [post]
func (h *DocumentHandler) RebuildRegistry(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.documents.RebuildRegistry(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
