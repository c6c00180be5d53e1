package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	cashapp "github.com/erp/ledgercore/internal/application/cash"
	docapp "github.com/erp/ledgercore/internal/application/document"
	"github.com/erp/ledgercore/internal/domain/cash"
	"github.com/erp/ledgercore/internal/infrastructure/auth"
	"github.com/erp/ledgercore/internal/infrastructure/config"
	"github.com/erp/ledgercore/internal/infrastructure/persistence"
	"github.com/erp/ledgercore/internal/infrastructure/persistence/tenant"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type apiHarness struct {
	t      *testing.T
	engine *gin.Engine
	jwt    *auth.JWTService
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newAPIHarness(t *testing.T) *apiHarness {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	base, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	pool, err := base.DB()
	require.NoError(t, err)
	pool.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = pool.Close() })

	log := zaptest.NewLogger(t)
	tenants, err := tenant.NewRouter(base, tenant.SQLiteDialector, tenant.Config{
		Strategy:    tenant.StrategyPrefix,
		CacheSize:   4,
		AutoMigrate: true,
		Logger:      logger.Default.LogMode(logger.Silent),
	}, persistence.MigrateNamespace, log)
	require.NoError(t, err)
	t.Cleanup(tenants.Close)

	uow := persistence.NewGormUnitOfWork(tenants)
	defRepo := persistence.NewGormDefinitionRepository(tenants)
	definitions := docapp.NewDefinitionService(defRepo, docapp.NumberingOptions{
		MaxRetries:   3,
		RetryBackoff: time.Millisecond,
		LockTTL:      time.Second,
	})
	documents := docapp.NewDocumentService(defRepo, persistence.NewGormHeaderRepository(tenants),
		persistence.NewGormRegistryRepository(tenants), definitions, uow)

	cashiers := persistence.NewGormCashierRepository(tenants)
	sessions := cashapp.NewSessionService(
		persistence.NewGormRegisterRepository(tenants),
		cashiers,
		persistence.NewGormSessionRepository(tenants),
		uow,
		cash.DefaultVariancePolicy(),
	)

	jwtService := auth.NewJWTService(config.JWTConfig{Secret: "api-test-secret", Issuer: "ledgercore-test"})
	engine := NewEngine(Dependencies{
		Logger:      log,
		HTTP:        config.HTTPConfig{MaxBodySize: 1 << 20, RequestTimeout: 5 * time.Second},
		JWT:         jwtService,
		Definitions: definitions,
		Documents:   documents,
		Sessions:    sessions,
		Cashiers:    cashapp.NewCashierResolver(cashiers),
		DB:          pool,
		Profiling:   true,
	})

	return &apiHarness{t: t, engine: engine, jwt: jwtService}
}

func (h *apiHarness) token(tenantID, userID uuid.UUID) string {
	h.t.Helper()
	token, err := h.jwt.IssueAccessToken(tenantID, userID, "tester", time.Hour)
	require.NoError(h.t, err)
	return token
}

func (h *apiHarness) do(token, method, path string, body any) (int, envelope) {
	h.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, req)

	var resp envelope
	require.NoError(h.t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

func decodeData(t *testing.T, resp envelope, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(resp.Data, out))
}

func TestAPI_Health(t *testing.T) {
	h := newAPIHarness(t)

	code, resp := h.do("", http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Success)

	code, _ = h.do("", http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestAPI_RequiresToken(t *testing.T) {
	h := newAPIHarness(t)

	code, resp := h.do("", http.MethodGet, "/api/v1/documents", nil)

	assert.Equal(t, http.StatusUnauthorized, code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "ERR_UNAUTHORIZED", resp.Error.Code)
}

func TestAPI_DocumentLifecycle(t *testing.T) {
	h := newAPIHarness(t)
	token := h.token(uuid.New(), uuid.New())

	code, resp := h.do(token, http.MethodPost, "/api/v1/document-definitions", map[string]any{
		"name": "Purchase", "code": "PUR", "prefix": "PUR", "module": "PURCHASES",
	})
	require.Equal(t, http.StatusCreated, code, resp)
	var def docapp.DefinitionResponse
	decodeData(t, resp, &def)

	code, resp = h.do(token, http.MethodPost, "/api/v1/documents", map[string]any{
		"definition_id": def.ID,
		"lines": []map[string]any{
			{"item_id": uuid.New(), "item_name": "Bolt", "quantity": "4", "unit_price": "25"},
			{"item_id": uuid.New(), "item_name": "Nut", "quantity": "10", "unit_price": "1"},
		},
	})
	require.Equal(t, http.StatusCreated, code, resp)
	var doc docapp.DocumentResponse
	decodeData(t, resp, &doc)
	assert.Equal(t, "PUR000001", doc.DocumentNumber)
	assert.Equal(t, "DRAFT", doc.Status)
	assert.Equal(t, "110", doc.TotalAmount.String())

	code, resp = h.do(token, http.MethodGet, "/api/v1/documents/by-number/PUR000001", nil)
	require.Equal(t, http.StatusOK, code)
	var byNumber docapp.DocumentResponse
	decodeData(t, resp, &byNumber)
	assert.Equal(t, doc.ID, byNumber.ID)

	code, resp = h.do(token, http.MethodGet, "/api/v1/documents", nil)
	require.Equal(t, http.StatusOK, code, resp)
	var listed []docapp.DocumentResponse
	decodeData(t, resp, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, "110", listed[0].TotalAmount.String())

	code, resp = h.do(token, http.MethodPost, "/api/v1/documents/"+doc.ID.String()+"/activate", nil)
	require.Equal(t, http.StatusOK, code, resp)
	var activated docapp.DocumentResponse
	decodeData(t, resp, &activated)
	assert.Equal(t, "ACTIVE", activated.Status)

	code, resp = h.do(token, http.MethodPost, "/api/v1/documents/"+doc.ID.String()+"/activate", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.False(t, resp.Success)

	code, resp = h.do(token, http.MethodGet, "/api/v1/transaction-registry/summary", nil)
	require.Equal(t, http.StatusOK, code)
	var totals []docapp.RegistryTotalResponse
	decodeData(t, resp, &totals)
	require.Len(t, totals, 1)
	assert.Equal(t, "STOCK_IN", totals[0].Type)
	assert.Equal(t, int64(2), totals[0].Entries)
	assert.Equal(t, "110", totals[0].Value.String())

	code, _ = h.do(token, http.MethodGet, "/api/v1/documents/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAPI_DocumentsAreTenantScoped(t *testing.T) {
	h := newAPIHarness(t)
	owner := h.token(uuid.New(), uuid.New())
	stranger := h.token(uuid.New(), uuid.New())

	_, resp := h.do(owner, http.MethodPost, "/api/v1/document-definitions", map[string]any{
		"name": "Sale", "code": "FAC", "prefix": "FAC", "module": "SALES",
	})
	var def docapp.DefinitionResponse
	decodeData(t, resp, &def)
	_, resp = h.do(owner, http.MethodPost, "/api/v1/documents", map[string]any{"definition_id": def.ID})
	var doc docapp.DocumentResponse
	decodeData(t, resp, &doc)

	code, _ := h.do(stranger, http.MethodGet, "/api/v1/documents/"+doc.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = h.do(owner, http.MethodGet, "/api/v1/documents/"+doc.ID.String(), nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestAPI_CashSessionLifecycle(t *testing.T) {
	h := newAPIHarness(t)
	tenantID, userID := uuid.New(), uuid.New()
	token := h.token(tenantID, userID)

	code, resp := h.do(token, http.MethodPost, "/api/v1/cash/registers", map[string]any{"code": "POS-1", "name": "Front"})
	require.Equal(t, http.StatusCreated, code, resp)
	var reg cashapp.RegisterResponse
	decodeData(t, resp, &reg)

	code, _ = h.do(token, http.MethodPost, "/api/v1/cash/sessions", map[string]any{"register_id": reg.ID})
	assert.Equal(t, http.StatusForbidden, code, "a user without a cashier record cannot open sessions")

	code, resp = h.do(token, http.MethodPost, "/api/v1/cash/cashiers", map[string]any{"user_id": userID, "name": "Ana"})
	require.Equal(t, http.StatusCreated, code, resp)

	code, resp = h.do(token, http.MethodPost, "/api/v1/cash/sessions", map[string]any{
		"register_id": reg.ID, "opening_balance": "100",
	})
	require.Equal(t, http.StatusCreated, code, resp)
	var session cashapp.SessionResponse
	decodeData(t, resp, &session)
	assert.Equal(t, "OPEN", session.Status)
	assert.Nil(t, session.CalculatedBalance)

	code, resp = h.do(token, http.MethodPost, "/api/v1/cash/sessions", map[string]any{"register_id": reg.ID})
	assert.Equal(t, http.StatusConflict, code)
	require.NotNil(t, resp.Error)

	sessionPath := "/api/v1/cash/sessions/" + session.ID.String()
	code, _ = h.do(token, http.MethodPost, sessionPath+"/movements", map[string]any{
		"amount": "50", "concept": "sale", "is_income": true,
	})
	require.Equal(t, http.StatusOK, code)
	code, _ = h.do(token, http.MethodPost, sessionPath+"/movements", map[string]any{
		"amount": "20", "concept": "refund",
	})
	require.Equal(t, http.StatusOK, code)

	code, _ = h.do(token, http.MethodPost, sessionPath+"/close-request", map[string]any{"declared_balance": "-1"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, resp = h.do(token, http.MethodPost, sessionPath+"/close-request", map[string]any{"declared_balance": "130"})
	require.Equal(t, http.StatusOK, code, resp)
	var pending cashapp.SessionResponse
	decodeData(t, resp, &pending)
	assert.Equal(t, "CLOSING", pending.Status)
	assert.Nil(t, pending.CalculatedBalance, "calculated balance stays hidden until closed")
	assert.Nil(t, pending.Variance)

	code, _ = h.do(token, http.MethodGet, sessionPath+"/reconciliation", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, resp = h.do(token, http.MethodPost, sessionPath+"/close-confirm", nil)
	require.Equal(t, http.StatusOK, code, resp)
	var closed cashapp.SessionResponse
	decodeData(t, resp, &closed)
	assert.Equal(t, "CLOSED", closed.Status)
	require.NotNil(t, closed.CalculatedBalance)
	assert.Equal(t, "130", closed.CalculatedBalance.String())
	assert.Equal(t, "NORMAL", closed.VarianceLevel)

	code, resp = h.do(token, http.MethodGet, sessionPath+"/reconciliation", nil)
	require.Equal(t, http.StatusOK, code)
	var rec cashapp.ReconciliationResponse
	decodeData(t, resp, &rec)
	assert.Equal(t, "50", rec.TotalIncome.String())
	assert.Equal(t, "20", rec.TotalOutflow.String())
	assert.Equal(t, 1, rec.IncomeCount)
	assert.Equal(t, 1, rec.OutflowCount)

	other := h.token(tenantID, uuid.New())
	code, _ = h.do(other, http.MethodGet, sessionPath, nil)
	assert.Equal(t, http.StatusOK, code, "reads are open to any tenant member")
}
