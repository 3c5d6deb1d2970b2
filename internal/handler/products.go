package handler

import (
	"net/http"
	"strconv"

	"github.com/bryan1993-HA/domovra-addons/internal/apierror"
	"github.com/bryan1993-HA/domovra-addons/internal/dto"
	"github.com/bryan1993-HA/domovra-addons/internal/repository"
	"github.com/bryan1993-HA/domovra-addons/internal/service"

	"github.com/gin-gonic/gin"
)

type ProductsHandler struct {
	products service.ProductService
	stock    service.StockService
	insights service.InsightsService
}

func NewProductsHandler(products service.ProductService, stock service.StockService, insights service.InsightsService) *ProductsHandler {
	return &ProductsHandler{products: products, stock: stock, insights: insights}
}

// Create godoc
// @Summary Create a product (idempotent on name, then barcode)
// @Tags products
// @Accept json
// @Produce json
// @Param body body dto.CreateProductRequest true "Product"
// @Success 201 {object} dto.CreatedResponse
// @Success 200 {object} dto.CreatedResponse "an existing product matched"
// @Failure 400 {object} apierror.APIError
// @Router /api/products [post]
func (h *ProductsHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.products.Create(c.Request.Context(), req)
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
// @Summary List products with stock totals
// @Tags products
// @Produce json
// @Param q query string false "Name filter"
// @Success 200 {array} dto.ProductStatsResponse
// @Router /api/products [get]
func (h *ProductsHandler) List(c *gin.Context) {
	var filter dto.ProductFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.products.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductsHandler) LowStock(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid limit"))
		return
	}
	resp, err := h.products.LowStock(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetByBarcode godoc
// @Summary Look a product up by barcode
// @Tags products
// @Produce json
// @Param code path string true "Barcode"
// @Success 200 {object} dto.ProductResponse
// @Failure 404 {object} apierror.APIError
// @Router /api/products/barcode/{code} [get]
func (h *ProductsHandler) GetByBarcode(c *gin.Context) {
	resp, err := h.products.GetByBarcode(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductsHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductsHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.products.Update(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete removes the product together with its lots and their movements.
func (h *ProductsHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Adjust godoc
// @Summary Add or remove stock by unit steps
// @Tags products
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param body body dto.AdjustProductRequest true "Delta in steps"
// @Success 200 {object} dto.AdjustProductResponse
// @Failure 404 {object} apierror.APIError
// @Router /api/products/{id}/adjust [post]
func (h *ProductsHandler) Adjust(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.AdjustProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.stock.AdjustProduct(c.Request.Context(), id, req.Delta)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Consume godoc
// @Summary Consume a product across its lots, soonest best-before first
// @Tags products
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param body body dto.ConsumeRequest true "Quantity"
// @Success 200 {object} dto.FIFOResponse
// @Failure 404 {object} apierror.APIError "no stock"
// @Router /api/products/{id}/consume [post]
func (h *ProductsHandler) Consume(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.ConsumeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.stock.ConsumeFIFO(c.Request.Context(), id, req.Qty)
	if err != nil {
		if resp != nil && len(resp.Operations) > 0 {
			// some lots were already drained; report them with the failure
			c.Header("X-Partial-Consumption", "true")
			c.JSON(http.StatusConflict, gin.H{"detail": err.Error(), "partial": resp})
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductsHandler) Movements(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var filter dto.MovementFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.stock.ListMovements(c.Request.Context(), repository.MovementFilter{
		ProductID: id,
		Type:      filter.Type,
		Page:      filter.Page,
		Limit:     filter.Limit,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductsHandler) Insights(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.insights.ForProduct(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AllInsights returns insights for every product keyed by product id.
func (h *ProductsHandler) AllInsights(c *gin.Context) {
	resp, err := h.insights.All(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
