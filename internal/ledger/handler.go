package ledger

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/murasakijyuutann/transport-payment/internal/api"
	"github.com/murasakijyuutann/transport-payment/internal/apperr"
	"github.com/murasakijyuutann/transport-payment/internal/auth"
)

type Handler struct {
	svc      Service
	dailyCap decimal.Decimal
	loc      *time.Location
}

func NewHandler(svc Service, dailyCap decimal.Decimal, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{svc: svc, dailyCap: dailyCap, loc: loc}
}

// GetBalance godoc
// @Summary      Wallet balance
// @Tags         wallet
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  Wallet
// @Router       /api/wallet [get]
func (h *Handler) GetBalance(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	w, err := h.svc.Balance(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load wallet"})
		return
	}

	c.JSON(http.StatusOK, w)
}

// TopUp godoc
// @Summary      Top up wallet
// @Tags         wallet
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      TopUpRequest  true  "Amount to add"
// @Success      200      {object}  Transaction
// @Failure      400      {object}  gin.H
// @Router       /api/wallet/top-up [post]
func (h *Handler) TopUp(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.Amount.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
		return
	}

	txn, err := h.svc.TopUp(c.Request.Context(), userID, req.Amount)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidAmount) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to top up wallet"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "wallet recharged",
		"transaction": txn,
		"balance":     txn.BalanceAfter,
	})
}

// ListTransactions godoc
// @Summary      Ledger entries of the current user
// @Tags         wallet
// @Security     BearerAuth
// @Produce      json
// @Param        limit   query  int  false  "Page size"
// @Param        offset  query  int  false  "Offset"
// @Success      200  {array}  Transaction
// @Router       /api/wallet/transactions [get]
func (h *Handler) ListTransactions(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	page, ok := api.BindPage(c)
	if !ok {
		return
	}

	txs, err := h.svc.Transactions(c.Request.Context(), userID, page.Limit, page.Offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load transactions"})
		return
	}

	if txs == nil {
		txs = []Transaction{}
	}
	c.JSON(http.StatusOK, txs)
}

// DailySpend godoc
// @Summary      Journey spend for a calendar day
// @Tags         wallet
// @Security     BearerAuth
// @Produce      json
// @Param        date  query  string  false  "YYYY-MM-DD, defaults to today"
// @Success      200  {object}  DailySpendResponse
// @Failure      400  {object}  gin.H
// @Router       /api/wallet/daily-spend [get]
func (h *Handler) DailySpend(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	day := time.Now().In(h.loc)
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.ParseInLocation(time.DateOnly, raw, h.loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		day = parsed
	}

	spent, err := h.svc.DailySpend(c.Request.Context(), userID, day)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load daily spend"})
		return
	}

	c.JSON(http.StatusOK, DailySpendResponse{
		Date:       day.Format(time.DateOnly),
		Spent:      spent,
		DailyCap:   h.dailyCap,
		CapReached: spent.GreaterThanOrEqual(h.dailyCap),
	})
}
