// README: Place suggestion and resolution handlers.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"guava/internal/maps"
	"guava/internal/modules/places"
	"guava/internal/session"
)

type PlacesHandler struct {
	places     *places.Service
	debouncers *session.Registry[*places.Debouncer]
}

// NewPlacesHandler serves suggestions. When debouncers is non-nil, callers sending
// X-Session-ID get their own debouncer, so a typist's superseded queries never reach
// the provider.
func NewPlacesHandler(svc *places.Service, debouncers *session.Registry[*places.Debouncer]) *PlacesHandler {
	return &PlacesHandler{places: svc, debouncers: debouncers}
}

type suggestResp struct {
	Suggestions []maps.Suggestion `json:"suggestions"`
	Superseded  bool              `json:"superseded,omitempty"`
}

func (h *PlacesHandler) Suggest(c *gin.Context) {
	q := c.Query("q")
	ctx := c.Request.Context()

	var (
		out []maps.Suggestion
		err error
	)
	if h.debouncers != nil && c.GetHeader(HeaderSessionID) != "" {
		out, err = h.debouncers.Get(sessionKey(c)).Search(ctx, q)
	} else {
		out, err = h.places.Search(ctx, q)
	}
	switch {
	case errors.Is(err, places.ErrSuperseded):
		writeJSON(c, http.StatusOK, suggestResp{Suggestions: []maps.Suggestion{}, Superseded: true})
		return
	case err != nil:
		_ = c.Error(err)
		writeError(c, http.StatusBadGateway, "suggestions unavailable")
		return
	}
	if out == nil {
		out = []maps.Suggestion{}
	}
	writeJSON(c, http.StatusOK, suggestResp{Suggestions: out})
}

// Resolve answers GET /api/places/:placeId with the place's coordinates.
func (h *PlacesHandler) Resolve(c *gin.Context) {
	id := c.Param("placeId")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing place id")
		return
	}
	p, err := h.places.Resolve(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		writeError(c, http.StatusBadGateway, "place lookup failed")
		return
	}
	writeJSON(c, http.StatusOK, p)
}
