package station

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/murasakijyuutann/transport-payment/internal/db"
)

type Handler struct {
	repo Repository
	q    db.Querier
}

func NewHandler(repo Repository, q db.Querier) *Handler {
	return &Handler{repo: repo, q: q}
}

// ListStations godoc
// @Summary      List stations
// @Tags         stations
// @Produce      json
// @Success      200  {array}  Station
// @Router       /api/stations [get]
func (h *Handler) ListStations(c *gin.Context) {
	stations, err := h.repo.List(c.Request.Context(), h.q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stations"})
		return
	}
	if stations == nil {
		stations = []Station{}
	}
	c.JSON(http.StatusOK, stations)
}

// GetStation godoc
// @Summary      Station by code
// @Tags         stations
// @Produce      json
// @Param        code  path  string  true  "Station code"
// @Success      200  {object}  Station
// @Failure      404  {object}  gin.H
// @Router       /api/stations/{code} [get]
func (h *Handler) GetStation(c *gin.Context) {
	s, err := h.repo.FindByCode(c.Request.Context(), h.q, c.Param("code"))
	if err != nil {
		if errors.Is(err, ErrStationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Station not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	c.JSON(http.StatusOK, s)
}
