package journey

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/murasakijyuutann/transport-payment/internal/api"
	"github.com/murasakijyuutann/transport-payment/internal/apperr"
	"github.com/murasakijyuutann/transport-payment/internal/auth"
	"github.com/murasakijyuutann/transport-payment/internal/logger"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error("journey request failed", "path", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// TapIn godoc
// @Summary      Tap in at a station
// @Description  Starts a journey for the card. Fails when the card already has a journey in progress.
// @Tags         journeys
// @Accept       json
// @Produce      json
// @Param        request  body      TapRequest  true  "Card and station"
// @Success      201      {object}  TapInResult
// @Failure      400      {object}  gin.H
// @Failure      402      {object}  gin.H
// @Failure      404      {object}  gin.H
// @Failure      409      {object}  gin.H
// @Router       /api/journeys/tap-in [post]
func (h *Handler) TapIn(c *gin.Context) {
	var req TapRequest
	if !api.BindJSON(c, &req) {
		return
	}

	result, err := h.svc.TapIn(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// TapOut godoc
// @Summary      Tap out at a station
// @Description  Completes the card's journey, prices it and debits the wallet.
// @Tags         journeys
// @Accept       json
// @Produce      json
// @Param        request  body      TapRequest  true  "Card and station"
// @Success      200      {object}  TapOutResult
// @Failure      400      {object}  gin.H
// @Failure      402      {object}  gin.H
// @Failure      404      {object}  gin.H
// @Failure      409      {object}  gin.H
// @Router       /api/journeys/tap-out [post]
func (h *Handler) TapOut(c *gin.Context) {
	var req TapRequest
	if !api.BindJSON(c, &req) {
		return
	}

	result, err := h.svc.TapOut(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ActiveJourney godoc
// @Summary      Journey in progress for a card
// @Tags         journeys
// @Produce      json
// @Param        card_number  query  string  true  "Card number"
// @Success      200  {object}  View
// @Success      204
// @Failure      404  {object}  gin.H
// @Router       /api/journeys/active [get]
func (h *Handler) ActiveJourney(c *gin.Context) {
	cardNumber := c.Query("card_number")
	if cardNumber == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "card_number is required"})
		return
	}

	view, err := h.svc.ActiveJourney(c.Request.Context(), cardNumber)
	if errors.Is(err, ErrNoActiveJourney) {
		c.Status(http.StatusNoContent)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// History godoc
// @Summary      Journeys of the current user
// @Tags         journeys
// @Security     BearerAuth
// @Produce      json
// @Param        limit   query  int  false  "Page size"
// @Param        offset  query  int  false  "Offset"
// @Success      200  {array}  View
// @Router       /api/journeys/history [get]
func (h *Handler) History(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	page, ok := api.BindPage(c)
	if !ok {
		return
	}

	views, err := h.svc.History(c.Request.Context(), userID, page.Limit, page.Offset)
	if err != nil {
		respondError(c, err)
		return
	}
	if views == nil {
		views = []View{}
	}

	c.JSON(http.StatusOK, views)
}

// Sweep godoc
// @Summary      Resolve abandoned journeys now
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  SweepResponse
// @Router       /admin/journeys/sweep [post]
func (h *Handler) Sweep(c *gin.Context) {
	processed, err := h.svc.SweepIncompleteJourneys(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SweepResponse{Processed: processed})
}
