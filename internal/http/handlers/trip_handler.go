// README: Trip estimate handlers; one-shot estimates and per-session estimators.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"guava/internal/modules/pricing"
	"guava/internal/modules/trip"
	"guava/internal/session"
	"guava/internal/types"
)

type TripHandler struct {
	trips    *trip.Service
	sessions *session.Registry[*trip.Estimator]
}

func NewTripHandler(svc *trip.Service, sessions *session.Registry[*trip.Estimator]) *TripHandler {
	return &TripHandler{trips: svc, sessions: sessions}
}

type estimateReq struct {
	Pickup      types.Point `json:"pickup"`
	Destination types.Point `json:"destination"`
	ServiceType string      `json:"serviceType"`
}

type serviceTypeReq struct {
	ServiceType string `json:"serviceType" binding:"required"`
}

func parseServiceType(raw string) (pricing.ServiceType, error) {
	if raw == "" {
		return pricing.DefaultServiceType, nil
	}
	return pricing.ParseServiceType(raw)
}

// Estimate answers POST /api/trips/estimate without touching session state.
func (h *TripHandler) Estimate(c *gin.Context) {
	var req estimateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	st, err := parseServiceType(req.ServiceType)
	if err != nil {
		writeTripError(c, err)
		return
	}
	res, err := h.trips.Estimate(c.Request.Context(), trip.Request{
		Pickup:      req.Pickup,
		Destination: req.Destination,
		ServiceType: st,
	})
	if err != nil {
		writeTripError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, res)
}

// estimator returns the session's estimator and a context detached from the client
// connection, so an aborted request still settles the session state.
func (h *TripHandler) estimator(c *gin.Context) (*trip.Estimator, context.Context) {
	return h.sessions.Get(sessionKey(c)), context.WithoutCancel(c.Request.Context())
}

func (h *TripHandler) Session(c *gin.Context) {
	est := h.sessions.Get(sessionKey(c))
	writeJSON(c, http.StatusOK, est.Snapshot())
}

func (h *TripHandler) SetPickup(c *gin.Context) {
	var p types.Point
	if err := c.ShouldBindJSON(&p); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	est, ctx := h.estimator(c)
	writeJSON(c, http.StatusOK, est.SetPickup(ctx, p))
}

func (h *TripHandler) SetDestination(c *gin.Context) {
	var p types.Point
	if err := c.ShouldBindJSON(&p); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	est, ctx := h.estimator(c)
	writeJSON(c, http.StatusOK, est.SetDestination(ctx, p))
}

// Clear handles DELETE /api/trips/session/:point where point is pickup or destination.
func (h *TripHandler) Clear(c *gin.Context) {
	point := c.Param("point")
	if point != "pickup" && point != "destination" {
		writeError(c, http.StatusBadRequest, "point must be pickup or destination")
		return
	}
	est, ctx := h.estimator(c)
	if point == "pickup" {
		writeJSON(c, http.StatusOK, est.ClearPickup(ctx))
		return
	}
	writeJSON(c, http.StatusOK, est.ClearDestination(ctx))
}

func (h *TripHandler) Swap(c *gin.Context) {
	est, ctx := h.estimator(c)
	writeJSON(c, http.StatusOK, est.Swap(ctx))
}

func (h *TripHandler) SetServiceType(c *gin.Context) {
	var req serviceTypeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "serviceType is required")
		return
	}
	st, err := pricing.ParseServiceType(req.ServiceType)
	if err != nil {
		writeTripError(c, err)
		return
	}
	est, ctx := h.estimator(c)
	writeJSON(c, http.StatusOK, est.SetServiceType(ctx, st))
}
