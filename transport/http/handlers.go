package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vitalis-labs/healthmarket/core"
	"github.com/vitalis-labs/healthmarket/service"
)

// Handlers contains the HTTP handlers for auth and record endpoints.
type Handlers struct {
	auth    *service.AuthService
	records *service.RecordService
	logger  *zap.Logger
}

// NewHandlers creates the handler set.
func NewHandlers(auth *service.AuthService, records *service.RecordService, logger *zap.Logger) *Handlers {
	return &Handlers{auth: auth, records: records, logger: logger}
}

// Challenge handles POST /auth/challenge.
func (h *Handlers) Challenge(c *gin.Context) {
	var req struct {
		Address string `json:"address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, core.ErrInvalidIdentity)
		return
	}

	message, err := h.auth.CreateChallenge(c.Request.Context(), req.Address)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}

// Verify handles POST /auth/verify.
func (h *Handlers) Verify(c *gin.Context) {
	var req struct {
		Address   string `json:"address"`
		Message   string `json:"message"`
		Signature string `json:"signature"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, core.ErrMissingInput)
		return
	}

	token, err := h.auth.VerifyAndIssue(c.Request.Context(), req.Address, req.Message, req.Signature)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"address": core.NormalizeIdentity(req.Address).String(),
	})
}

// List handles GET /health-data.
func (h *Handlers) List(c *gin.Context) {
	q := service.ListQuery{
		Page:      intQuery(c, "page", 1),
		Limit:     intQuery(c, "limit", 10),
		Owner:     c.Query("owner"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}
	if v := c.Query("priceMin"); v != "" {
		p, err := decimal.NewFromString(v)
		if err != nil {
			respondError(c, h.logger, core.ErrMissingInput)
			return
		}
		q.PriceMin = &p
	}
	if v := c.Query("priceMax"); v != "" {
		p, err := decimal.NewFromString(v)
		if err != nil {
			respondError(c, h.logger, core.ErrMissingInput)
			return
		}
		q.PriceMax = &p
	}

	result, err := h.records.List(c.Request.Context(), requesterIdentity(c), q)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Get handles GET /health-data/:id.
func (h *Handlers) Get(c *gin.Context) {
	id, ok := recordID(c, h.logger)
	if !ok {
		return
	}

	record, err := h.records.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// Register handles POST /health-data.
func (h *Handlers) Register(c *gin.Context) {
	var req struct {
		Payload json.RawMessage `json:"payload"`
		Price   decimal.Decimal `json:"price"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, core.ErrMissingInput)
		return
	}

	id, dataHash, err := h.records.Register(c.Request.Context(), requesterIdentity(c), req.Payload, req.Price)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":       id,
		"dataHash": dataHash,
	})
}

// UpdatePrice handles PUT /health-data/:id/price.
func (h *Handlers) UpdatePrice(c *gin.Context) {
	id, ok := recordID(c, h.logger)
	if !ok {
		return
	}

	var req struct {
		Price decimal.Decimal `json:"price"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, core.ErrMissingInput)
		return
	}

	if err := h.records.UpdatePrice(c.Request.Context(), requesterIdentity(c), id, req.Price); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "price updated",
		"id":       id,
		"newPrice": req.Price,
	})
}

// Grant handles POST /health-data/:id/grants.
func (h *Handlers) Grant(c *gin.Context) {
	id, ok := recordID(c, h.logger)
	if !ok {
		return
	}

	var req struct {
		Grantee string `json:"grantee"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, core.ErrMissingInput)
		return
	}

	grant, err := h.records.GrantAccess(c.Request.Context(), requesterIdentity(c), id, req.Grantee)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, grant)
}

// Payload handles GET /health-data/:id/payload.
func (h *Handlers) Payload(c *gin.Context) {
	id, ok := recordID(c, h.logger)
	if !ok {
		return
	}

	payload, err := h.records.GetPayload(c.Request.Context(), requesterIdentity(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}

// Health handles GET /health.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func recordID(c *gin.Context, logger *zap.Logger) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		respondError(c, logger, core.ErrMissingInput)
		return 0, false
	}
	return id, true
}

func intQuery(c *gin.Context, key string, fallback int) int {
	v := c.Query(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
