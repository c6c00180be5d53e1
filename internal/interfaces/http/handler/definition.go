package handler

import (
	docapp "github.com/erp/ledgercore/internal/application/document"
	"github.com/gin-gonic/gin"
)

// DefinitionHandler handles document definition endpoints
type DefinitionHandler struct {
	BaseHandler
	definitions *docapp.DefinitionService
}

// NewDefinitionHandler creates a new DefinitionHandler
func NewDefinitionHandler(definitions *docapp.DefinitionService) *DefinitionHandler {
	return &DefinitionHandler{definitions: definitions}
}

// Create godoc
// @Summary  Create a document definition
// @Tags     document-definitions
// @Accept   json
// @Produce  json
// @Param    request body docapp.CreateDefinitionRequest true "Definition"
// @Success  201 {object} dto.Response
// @Failure  400 {object} dto.Response
// @Failure  409 {object} dto.Response
// @Router   /document-definitions [post]
func (h *DefinitionHandler) Create(c *gin.Context) {
	var req docapp.CreateDefinitionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	def, err := h.definitions.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, def)
}

// List godoc
// @Summary  List document definitions
// @Tags     document-definitions
// @Produce  json
// @Param    module    query string false "Module"
// @Param    is_active query bool   false "Active flag"
// @Success  200 {object} dto.Response
// @Router   /document-definitions [get]
func (h *DefinitionHandler) List(c *gin.Context) {
	var filter docapp.DefinitionListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	filter.Page, filter.PageSize = pageOrDefault(filter.Page, filter.PageSize, defaultPageSize)

	defs, total, err := h.definitions.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, defs, total, filter.Page, filter.PageSize)
}

// Get godoc
// @Summary  Get a document definition
// @Tags     document-definitions
// @Produce  json
// @Param    id path string true "Definition ID"
// @Success  200 {object} dto.Response
// @Failure  404 {object} dto.Response
// @Router   /document-definitions/{id} [get]
func (h *DefinitionHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	def, err := h.definitions.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, def)
}

// UpdateConfiguration godoc
// @Summary  Replace a definition's configuration
// @Tags     document-definitions
// @Accept   json
// @Produce  json
// @Param    id      path string                            true "Definition ID"
// @Param    request body docapp.UpdateConfigurationRequest true "Configuration"
// @Success  200 {object} dto.Response
// @Router   /document-definitions/{id}/configuration [put]
func (h *DefinitionHandler) UpdateConfiguration(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req docapp.UpdateConfigurationRequest
	if !h.bindJSON(c, &req) {
		return
	}

	def, err := h.definitions.UpdateConfiguration(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, def)
}

// Deactivate godoc
// @Summary  Deactivate a document definition
// @Tags     document-definitions
// @Produce  json
// @Param    id path string true "Definition ID"
// @Success  200 {object} dto.Response
// @Router   /document-definitions/{id}/deactivate [post]
func (h *DefinitionHandler) Deactivate(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	def, err := h.definitions.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, def)
}
