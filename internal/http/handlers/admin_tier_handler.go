// README: Admin tier editor handlers; one in-memory editor per signed-in operator.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"guava/internal/http/middleware"
	"guava/internal/modules/pricing"
	"guava/internal/modules/tiereditor"
	"guava/internal/session"
)

type AdminTierHandler struct {
	editors *session.Registry[*tiereditor.Editor]
	logger  *zap.Logger
}

func NewAdminTierHandler(editors *session.Registry[*tiereditor.Editor], logger *zap.Logger) *AdminTierHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminTierHandler{editors: editors, logger: logger}
}

type editorResp struct {
	Active pricing.ServiceType `json:"active"`
	Views  []tiereditor.View   `json:"views"`
	Notice string              `json:"notice,omitempty"`
}

type editFieldReq struct {
	Field string   `json:"field" binding:"required"`
	Value *float64 `json:"value"`
}

type deleteResp struct {
	Deleted int64           `json:"deleted"`
	View    tiereditor.View `json:"view"`
}

// editor returns the caller's editor, loading all four service types on first use.
// A partial load still yields a usable editor (failed types hold defaults); the
// returned notice tells the operator.
func (h *AdminTierHandler) editor(c *gin.Context, reload bool) (*tiereditor.Editor, string) {
	uid := middleware.CallerUID(c)
	ed, ok := h.editors.Lookup(uid)
	if ok && !reload {
		return ed, ""
	}
	if !ok {
		ed = h.editors.Get(uid)
	}
	if err := ed.Load(c.Request.Context()); err != nil {
		h.logger.Warn("tier editor load incomplete", zap.String("uid", uid), zap.Error(err))
		return ed, "Some tiers could not be loaded; showing defaults."
	}
	return ed, ""
}

func allViews(ed *tiereditor.Editor) []tiereditor.View {
	views := make([]tiereditor.View, 0, len(pricing.ServiceTypes))
	for _, st := range pricing.ServiceTypes {
		views = append(views, ed.View(st))
	}
	return views
}

// List answers GET /api/admin/tiers; ?reload=true re-fetches every type.
func (h *AdminTierHandler) List(c *gin.Context) {
	ed, notice := h.editor(c, c.Query("reload") == "true")
	writeJSON(c, http.StatusOK, editorResp{Active: ed.Active(), Views: allViews(ed), Notice: notice})
}

// Show switches the active type and returns its view. It never fetches.
func (h *AdminTierHandler) Show(c *gin.Context) {
	ed, _ := h.editor(c, false)
	st, err := pricing.ParseServiceType(c.Param("serviceType"))
	if err != nil {
		writeEditorError(c, err)
		return
	}
	if err := ed.SetActive(st); err != nil {
		writeEditorError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, ed.View(st))
}

func (h *AdminTierHandler) activate(c *gin.Context) (*tiereditor.Editor, pricing.ServiceType, bool) {
	ed, _ := h.editor(c, false)
	st, err := pricing.ParseServiceType(c.Param("serviceType"))
	if err == nil {
		err = ed.SetActive(st)
	}
	if err != nil {
		writeEditorError(c, err)
		return nil, "", false
	}
	return ed, st, true
}

func rowIndex(c *gin.Context) (int, bool) {
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil || idx < 0 {
		writeError(c, http.StatusBadRequest, "invalid row index")
		return 0, false
	}
	return idx, true
}

// EditField answers PATCH /api/admin/tiers/:serviceType/:index. Local only.
func (h *AdminTierHandler) EditField(c *gin.Context) {
	ed, st, ok := h.activate(c)
	if !ok {
		return
	}
	idx, ok := rowIndex(c)
	if !ok {
		return
	}
	var req editFieldReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "field is required")
		return
	}
	field, err := tiereditor.ParseField(req.Field)
	if err != nil {
		writeEditorError(c, err)
		return
	}
	if err := ed.EditField(idx, field, req.Value); err != nil {
		writeEditorError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, ed.View(st))
}

func (h *AdminTierHandler) AddRow(c *gin.Context) {
	ed, st, ok := h.activate(c)
	if !ok {
		return
	}
	ed.AddRow()
	writeJSON(c, http.StatusCreated, ed.View(st))
}

// SaveRow answers POST /api/admin/tiers/:serviceType/rows/:index/save.
func (h *AdminTierHandler) SaveRow(c *gin.Context) {
	ed, st, ok := h.activate(c)
	if !ok {
		return
	}
	idx, ok := rowIndex(c)
	if !ok {
		return
	}
	if err := ed.SaveRow(c.Request.Context(), idx); err != nil {
		writeEditorError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, ed.View(st))
}

// Create answers POST /api/admin/tiers with a tier from the create dialog.
func (h *AdminTierHandler) Create(c *gin.Context) {
	ed, _ := h.editor(c, false)
	var t pricing.Tier
	if err := c.ShouldBindJSON(&t); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if err := ed.SaveTier(c.Request.Context(), t); err != nil {
		writeEditorError(c, err)
		return
	}
	st := t.ServiceType
	if st == "" {
		st = ed.Active()
	}
	writeJSON(c, http.StatusCreated, ed.View(st))
}

// BulkSave answers POST /api/admin/tiers/:serviceType/bulk.
func (h *AdminTierHandler) BulkSave(c *gin.Context) {
	ed, st, ok := h.activate(c)
	if !ok {
		return
	}
	if err := ed.BulkSave(c.Request.Context()); err != nil {
		writeEditorError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, ed.View(st))
}

// Refresh answers POST /api/admin/tiers/:serviceType/refresh.
func (h *AdminTierHandler) Refresh(c *gin.Context) {
	ed, st, ok := h.activate(c)
	if !ok {
		return
	}
	if err := ed.Refresh(c.Request.Context(), st); err != nil {
		writeEditorError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, ed.View(st))
}

// Delete answers DELETE /api/admin/tiers/id/:id?confirm=true.
func (h *AdminTierHandler) Delete(c *gin.Context) {
	ed, _ := h.editor(c, false)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(c, http.StatusBadRequest, "invalid tier id")
		return
	}
	if err := ed.Delete(c.Request.Context(), id, c.Query("confirm") == "true"); err != nil {
		writeEditorError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, deleteResp{Deleted: id, View: ed.View(ed.Active())})
}
