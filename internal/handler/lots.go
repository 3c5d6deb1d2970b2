package handler

import (
	"net/http"

	"github.com/bryan1993-HA/domovra-addons/internal/dto"
	"github.com/bryan1993-HA/domovra-addons/internal/repository"
	"github.com/bryan1993-HA/domovra-addons/internal/service"

	"github.com/gin-gonic/gin"
)

type LotsHandler struct{ stock service.StockService }

func NewLotsHandler(stock service.StockService) *LotsHandler {
	return &LotsHandler{stock: stock}
}

// List godoc
// @Summary List lots, soonest best-before first
// @Tags lots
// @Produce json
// @Param product_id query int false "Product"
// @Param location_id query int false "Location"
// @Param status query string false "red, yellow, green or unknown"
// @Param q query string false "Product name filter"
// @Success 200 {array} dto.LotResponse
// @Router /api/lots [get]
func (h *LotsHandler) List(c *gin.Context) {
	var filter dto.LotFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.stock.ListLots(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LotsHandler) Create(c *gin.Context) {
	var req dto.CreateLotRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.stock.CreateLot(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Merge adds to an identical lot (same product, location, dates) or creates it.
func (h *LotsHandler) Merge(c *gin.Context) {
	var req dto.MergeLotRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.stock.MergeOrCreate(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LotsHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.stock.GetLot(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LotsHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateLotRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.stock.UpdateLot(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LotsHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.stock.DeleteLot(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Consume godoc
// @Summary Take a quantity from one lot
// @Description Requests above the lot quantity are capped; an emptied lot is deleted.
// @Tags lots
// @Accept json
// @Produce json
// @Param id path int true "Lot ID"
// @Param body body dto.ConsumeRequest true "Quantity"
// @Success 200 {object} dto.ConsumeStep
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError "concurrent update"
// @Router /api/lots/{id}/consume [post]
func (h *LotsHandler) Consume(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.ConsumeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.stock.ConsumeLot(c.Request.Context(), id, req.Qty)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LotsHandler) Movements(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var filter dto.MovementFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.stock.ListMovements(c.Request.Context(), repository.MovementFilter{
		LotID: id,
		Type:  filter.Type,
		Page:  filter.Page,
		Limit: filter.Limit,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Purchase godoc
// @Summary Record a shop purchase
// @Tags lots
// @Accept json
// @Produce json
// @Param body body dto.PurchaseRequest true "Purchase"
// @Success 200 {object} dto.PurchaseResponse
// @Failure 400 {object} apierror.APIError
// @Router /api/purchases [post]
func (h *LotsHandler) Purchase(c *gin.Context) {
	var req dto.PurchaseRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.stock.RecordPurchase(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Reconcile lists products whose stock disagrees with the movement ledger.
func (h *LotsHandler) Reconcile(c *gin.Context) {
	resp, err := h.stock.Reconcile(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
