package handler

import (
	"net/http"

	"github.com/bryan1993-HA/domovra-addons/internal/apierror"
	"github.com/bryan1993-HA/domovra-addons/internal/dto"
	"github.com/bryan1993-HA/domovra-addons/internal/infra"
	"github.com/bryan1993-HA/domovra-addons/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type SummaryHandler struct {
	summary service.SummaryService
	journal service.JournalService
}

func NewSummaryHandler(summary service.SummaryService, journal service.JournalService) *SummaryHandler {
	return &SummaryHandler{summary: summary, journal: journal}
}

// HASummary godoc
// @Summary Counters for Home Assistant sensors
// @Tags summary
// @Produce json
// @Success 200 {object} dto.HASummaryResponse
// @Router /api/ha/summary [get]
func (h *SummaryHandler) HASummary(c *gin.Context) {
	resp, err := h.summary.HASummary(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SummaryHandler) Shopping(c *gin.Context) {
	var filter dto.ShoppingFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.summary.ShoppingList(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ShoppingPDF godoc
// @Summary Shopping list as a printable PDF
// @Tags summary
// @Produce application/pdf
// @Param show query string false "outofstock, low or all"
// @Param q query string false "Name filter"
// @Success 200 {file} file
// @Router /api/shopping.pdf [get]
func (h *SummaryHandler) ShoppingPDF(c *gin.Context) {
	var filter dto.ShoppingFilter
	if !bindQuery(c, &filter) {
		return
	}
	list, err := h.summary.ShoppingList(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	pdf, err := infra.GenerateShoppingListPDF(*list)
	if err != nil {
		log.Error().Err(err).Msg("shopping list pdf")
		c.JSON(http.StatusInternalServerError, apierror.New("could not render PDF"))
		return
	}
	c.Header("Content-Disposition", `inline; filename="shopping-`+list.AsOf+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (h *SummaryHandler) Retention(c *gin.Context) {
	c.JSON(http.StatusOK, h.summary.Retention())
}

// Journal godoc
// @Summary Latest operator events, newest first
// @Tags journal
// @Produce json
// @Param limit query int false "Max entries (default 200, max 1000)"
// @Success 200 {array} dto.EventResponse
// @Router /api/journal [get]
func (h *SummaryHandler) Journal(c *gin.Context) {
	var filter dto.JournalFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.journal.List(c.Request.Context(), filter.Limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SummaryHandler) ClearJournal(c *gin.Context) {
	resp, err := h.journal.Clear(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
