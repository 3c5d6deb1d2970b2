package handler

import (
	"net/http"
	"strconv"

	"github.com/bryan1993-HA/domovra-addons/internal/apierror"
	"github.com/bryan1993-HA/domovra-addons/internal/dto"
	"github.com/bryan1993-HA/domovra-addons/internal/service"

	"github.com/gin-gonic/gin"
)

type LocationsHandler struct {
	locations service.LocationService
	stock     service.StockService
}

func NewLocationsHandler(locations service.LocationService, stock service.StockService) *LocationsHandler {
	return &LocationsHandler{locations: locations, stock: stock}
}

func (h *LocationsHandler) Create(c *gin.Context) {
	var req dto.CreateLocationRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.locations.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	status := http.StatusCreated
	if resp.Existing {
		status = http.StatusOK
	}
	c.JSON(status, resp)
}

// List godoc
// @Summary List locations with lot counts
// @Tags locations
// @Produce json
// @Success 200 {array} dto.LocationSummaryResponse
// @Router /api/locations [get]
func (h *LocationsHandler) List(c *gin.Context) {
	resp, err := h.locations.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LocationsHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateLocationRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.locations.Update(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary Delete a location, optionally moving its lots first
// @Tags locations
// @Produce json
// @Param id path int true "Location ID"
// @Param move_to query int false "Target location for the lots"
// @Success 200 {object} dto.DeleteLocationResponse
// @Failure 409 {object} apierror.APIError "freezer mismatch"
// @Router /api/locations/{id} [delete]
func (h *LocationsHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var moveTo *uint
	if raw := c.Query("move_to"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || v == 0 {
			c.JSON(http.StatusBadRequest, apierror.New("invalid move_to"))
			return
		}
		to := uint(v)
		moveTo = &to
	}
	resp, err := h.locations.Delete(c.Request.Context(), id, moveTo)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LocationsHandler) Move(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.MoveLotsRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.stock.MoveLots(c.Request.Context(), id, req.ToLocationID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
