package handler

import (
	"time"

	cashapp "github.com/erp/ledgercore/internal/application/cash"
	"github.com/erp/ledgercore/internal/domain/cash"
	"github.com/gin-gonic/gin"
)

// CashHandler handles cash register, cashier and session endpoints
type CashHandler struct {
	BaseHandler
	sessions *cashapp.SessionService
}

// NewCashHandler creates a new CashHandler
func NewCashHandler(sessions *cashapp.SessionService) *CashHandler {
	return &CashHandler{sessions: sessions}
}

// SessionQuery holds the query parameters of GET /cash/sessions
type SessionQuery struct {
	Status     string     `form:"status"`
	RegisterID string     `form:"register_id" binding:"omitempty,uuid"`
	CashierID  string     `form:"cashier_id" binding:"omitempty,uuid"`
	From       *time.Time `form:"from" time_format:"2006-01-02"`
	To         *time.Time `form:"to" time_format:"2006-01-02"`
	Page       int        `form:"page" binding:"min=0"`
	PageSize   int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// actingCashier returns the cashier cached by the cashier middleware
func (h *CashHandler) actingCashier(c *gin.Context) (*cash.Cashier, bool) {
	cashier, ok := cashapp.CashierFromContext(c.Request.Context())
	if !ok {
		h.Forbidden(c, "No cashier is associated with the current user")
		return nil, false
	}
	return cashier, true
}

// CreateRegister godoc
// @Summary  Create a cash register
// @Tags     cash
// @Accept   json
// @Produce  json
// @Param    request body cashapp.CreateRegisterRequest true "Register"
// @Success  201 {object} dto.Response
// @Failure  409 {object} dto.Response
// @Router   /cash/registers [post]
func (h *CashHandler) CreateRegister(c *gin.Context) {
	var req cashapp.CreateRegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}

	reg, err := h.sessions.CreateRegister(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, reg)
}

// ListRegisters godoc
// @Summary  List cash registers
// @Tags     cash
// @Produce  json
// @Success  200 {object} dto.Response
// @Router   /cash/registers [get]
func (h *CashHandler) ListRegisters(c *gin.Context) {
	regs, err := h.sessions.ListRegisters(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, regs)
}

// CreateCashier godoc
// @Summary  Register a platform user as a cashier
// @Tags     cash
// @Accept   json
// @Produce  json
// @Param    request body cashapp.CreateCashierRequest true "Cashier"
// @Success  201 {object} dto.Response
// @Failure  409 {object} dto.Response
// @Router   /cash/cashiers [post]
func (h *CashHandler) CreateCashier(c *gin.Context) {
	var req cashapp.CreateCashierRequest
	if !h.bindJSON(c, &req) {
		return
	}

	cashier, err := h.sessions.CreateCashier(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, cashier)
}

// OpenSession godoc
// @Summary  Open a cash session for the acting cashier
// @Tags     cash
// @Accept   json
// @Produce  json
// @Param    request body cashapp.OpenSessionRequest true "Session"
// @Success  201 {object} dto.Response
// @Failure  403 {object} dto.Response
// @Failure  409 {object} dto.Response
// @Router   /cash/sessions [post]
func (h *CashHandler) OpenSession(c *gin.Context) {
	cashier, ok := h.actingCashier(c)
	if !ok {
		return
	}
	var req cashapp.OpenSessionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	sess, err := h.sessions.Open(c.Request.Context(), cashier, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sess)
}

// ListSessions godoc
// @Summary  List cash sessions
// @Tags     cash
// @Produce  json
// @Param    status      query string false "OPEN, CLOSING or CLOSED"
// @Param    register_id query string false "Register ID"
// @Success  200 {object} dto.Response
// @Router   /cash/sessions [get]
func (h *CashHandler) ListSessions(c *gin.Context) {
	var q SessionQuery
	if !h.bindQuery(c, &q) {
		return
	}
	page, pageSize := pageOrDefault(q.Page, q.PageSize, defaultPageSize)

	sessions, total, err := h.sessions.List(c.Request.Context(), cashapp.SessionListFilter{
		Status:     q.Status,
		RegisterID: optionalUUID(q.RegisterID),
		CashierID:  optionalUUID(q.CashierID),
		From:       q.From,
		To:         q.To,
		Page:       page,
		PageSize:   pageSize,
		OrderBy:    q.OrderBy,
		OrderDir:   q.OrderDir,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, sessions, total, page, pageSize)
}

// GetSession godoc
// @Summary  Get a cash session; balances stay hidden until it is closed
// @Tags     cash
// @Produce  json
// @Param    id path string true "Session ID"
// @Success  200 {object} dto.Response
// @Failure  404 {object} dto.Response
// @Router   /cash/sessions/{id} [get]
func (h *CashHandler) GetSession(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	sess, err := h.sessions.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sess)
}

// AddMovement godoc
// @Summary  Record a cash entry or exit
// @Tags     cash
// @Accept   json
// @Produce  json
// @Param    id      path string                     true "Session ID"
// @Param    request body cashapp.AddMovementRequest true "Movement"
// @Success  200 {object} dto.Response
// @Failure  403 {object} dto.Response
// @Failure  422 {object} dto.Response
// @Router   /cash/sessions/{id}/movements [post]
func (h *CashHandler) AddMovement(c *gin.Context) {
	cashier, ok := h.actingCashier(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req cashapp.AddMovementRequest
	if !h.bindJSON(c, &req) {
		return
	}

	sess, err := h.sessions.AddMovement(c.Request.Context(), cashier, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sess)
}

// RequestClose godoc
// @Summary  Submit the blind count of a session
// @Tags     cash
// @Accept   json
// @Produce  json
// @Param    id      path string                      true "Session ID"
// @Param    request body cashapp.RequestCloseRequest true "Declared balance"
// @Success  200 {object} dto.Response
// @Failure  422 {object} dto.Response
// @Router   /cash/sessions/{id}/close-request [post]
func (h *CashHandler) RequestClose(c *gin.Context) {
	cashier, ok := h.actingCashier(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req cashapp.RequestCloseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	sess, err := h.sessions.RequestClose(c.Request.Context(), cashier, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sess)
}

// ConfirmClose godoc
// @Summary  Close a session and reveal its variance
// @Tags     cash
// @Produce  json
// @Param    id path string true "Session ID"
// @Success  200 {object} dto.Response
// @Failure  422 {object} dto.Response
// @Router   /cash/sessions/{id}/close-confirm [post]
func (h *CashHandler) ConfirmClose(c *gin.Context) {
	cashier, ok := h.actingCashier(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	sess, err := h.sessions.ConfirmClose(c.Request.Context(), cashier, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sess)
}

// Reconciliation godoc
// @Summary  Reconciliation report of a closed session
// @Tags     cash
// @Produce  json
// @Param    id path string true "Session ID"
// @Success  200 {object} dto.Response
// @Failure  422 {object} dto.Response
// @Router   /cash/sessions/{id}/reconciliation [get]
func (h *CashHandler) Reconciliation(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	report, err := h.sessions.Reconciliation(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}
