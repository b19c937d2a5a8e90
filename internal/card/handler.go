package card

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/murasakijyuutann/transport-payment/internal/api"
	"github.com/murasakijyuutann/transport-payment/internal/auth"
	"github.com/murasakijyuutann/transport-payment/internal/db"
	"github.com/murasakijyuutann/transport-payment/internal/logger"
)

type Handler struct {
	repo Repository
	q    db.Querier
}

func NewHandler(repo Repository, q db.Querier) *Handler {
	return &Handler{repo: repo, q: q}
}

// ListMyCards godoc
// @Summary      Cards of the current user
// @Tags         cards
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  Card
// @Router       /api/cards [get]
func (h *Handler) ListMyCards(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	cards, err := h.repo.ListByUser(c.Request.Context(), h.q, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cards"})
		return
	}
	if cards == nil {
		cards = []Card{}
	}

	c.JSON(http.StatusOK, cards)
}

// RegisterCard godoc
// @Summary      Register a travel card
// @Tags         cards
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      RegisterCardRequest  true  "Card details"
// @Success      201      {object}  Card
// @Failure      400      {object}  gin.H
// @Failure      409      {object}  gin.H
// @Router       /api/cards [post]
func (h *Handler) RegisterCard(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req RegisterCardRequest
	if !api.BindJSON(c, &req) {
		return
	}

	card := &Card{
		CardNumber:  req.CardNumber,
		UserID:      userID,
		HolderName:  req.HolderName,
		CardType:    req.CardType,
		ExpiryMonth: req.ExpiryMonth,
		ExpiryYear:  req.ExpiryYear,
		IsDefault:   req.IsDefault,
	}
	if err := h.repo.Create(c.Request.Context(), h.q, card); err != nil {
		if errors.Is(err, ErrCardExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "Card already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register card"})
		return
	}

	logger.Info("card registered", "user_id", userID, "card_id", card.ID)
	c.JSON(http.StatusCreated, card)
}

// BlockCard godoc
// @Summary      Block one of the current user's cards
// @Tags         cards
// @Security     BearerAuth
// @Produce      json
// @Param        cardNumber  path  string  true  "Card number"
// @Success      200  {object}  Card
// @Failure      403  {object}  gin.H
// @Failure      404  {object}  gin.H
// @Router       /api/cards/{cardNumber}/block [post]
func (h *Handler) BlockCard(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx := c.Request.Context()
	card, err := h.repo.FindByNumber(ctx, h.q, c.Param("cardNumber"))
	if err != nil {
		if errors.Is(err, ErrCardNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Card not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if card.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only block your own cards"})
		return
	}

	if err := h.repo.UpdateStatus(ctx, h.q, card.ID, StatusBlocked); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to block card"})
		return
	}

	card.Status = StatusBlocked
	c.JSON(http.StatusOK, card)
}
