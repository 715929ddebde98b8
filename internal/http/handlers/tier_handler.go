// README: Tier host endpoints backed by the Postgres tier store.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"guava/internal/modules/pricing"
)

type TierHandler struct {
	tiers *pricing.Service
}

func NewTierHandler(svc *pricing.Service) *TierHandler {
	return &TierHandler{tiers: svc}
}

func (h *TierHandler) List(c *gin.Context) {
	tiers, err := h.tiers.List(c.Request.Context(), pricing.ServiceType(c.Param("serviceType")))
	if err != nil {
		writePricingError(c, err)
		return
	}
	if tiers == nil {
		tiers = []pricing.Tier{}
	}
	writeJSON(c, http.StatusOK, tiers)
}

func (h *TierHandler) Upsert(c *gin.Context) {
	var t pricing.Tier
	if err := c.ShouldBindJSON(&t); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	saved, err := h.tiers.Upsert(c.Request.Context(), t)
	if err != nil {
		writePricingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, saved)
}

func (h *TierHandler) ReplaceAll(c *gin.Context) {
	var tiers []pricing.Tier
	if err := c.ShouldBindJSON(&tiers); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	st := pricing.ServiceType(c.Param("serviceType"))
	if err := h.tiers.ReplaceAll(c.Request.Context(), st, tiers); err != nil {
		writePricingError(c, err)
		return
	}
	saved, err := h.tiers.List(c.Request.Context(), st)
	if err != nil {
		writePricingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, saved)
}

func (h *TierHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid tier id")
		return
	}
	if err := h.tiers.Delete(c.Request.Context(), id); err != nil {
		writePricingError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
