// panels.go — обработчики endpoints панелей.
// POST /api/v1/panels — создание панели (workflow провижининга).
// GET /api/v1/panels — список панелей (владелец — свои, admin — все).
// DELETE /api/v1/panels/{idServer} — удаление панели.
// POST /api/v1/admin/panels — создание admin-панели (role=admin).
package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/panelhub/internal/api/errors"
	"github.com/bigkaa/panelhub/internal/api/middleware"
	"github.com/bigkaa/panelhub/internal/domain/model"
	"github.com/bigkaa/panelhub/internal/service"
)

// createPanelRequest — тело запроса создания панели.
type createPanelRequest struct {
	Username       string `json:"username"`
	RAM            string `json:"ram"`
	Disk           string `json:"disk"`
	CPU            string `json:"cpu"`
	HostingPackage string `json:"hostingPackage"`
	PanelType      string `json:"panelType"`
}

// CreatePanel — POST /api/v1/panels.
// Успешный ответ внешнего API передаётся клиенту без изменений.
func (h *APIHandler) CreatePanel(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromContext(r.Context())
	if id == nil {
		apierrors.Unauthorized(w, "Отсутствует личность в контексте")
		return
	}

	var req createPanelRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.panels.Create(r.Context(), id, service.CreatePanelParams{
		Username:       req.Username,
		RAM:            req.RAM,
		Disk:           req.Disk,
		CPU:            req.CPU,
		HostingPackage: req.HostingPackage,
		PanelType:      req.PanelType,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(result.Raw)
}

// panelResponse — запись о панели в ответах API.
type panelResponse struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	IDServer  string    `json:"idServer"`
	IDUser    string    `json:"idUser"`
	Username  string    `json:"username"`
	Domain    string    `json:"domain"`
	PanelType string    `json:"panelType"`
	CreatedAt time.Time `json:"createdAt"`
}

func toPanelResponse(p *model.UserPanel) panelResponse {
	return panelResponse{
		ID:        p.ID,
		OwnerID:   p.OwnerID,
		IDServer:  p.IDServer,
		IDUser:    p.IDUser,
		Username:  p.Username,
		Domain:    p.Domain,
		PanelType: p.PanelType,
		CreatedAt: p.CreatedAt,
	}
}

// ListPanels — GET /api/v1/panels.
func (h *APIHandler) ListPanels(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromContext(r.Context())
	if id == nil {
		apierrors.Unauthorized(w, "Отсутствует личность в контексте")
		return
	}

	panels, err := h.panels.List(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	result := make([]panelResponse, 0, len(panels))
	for _, p := range panels {
		result = append(result, toPanelResponse(p))
	}
	writeJSON(w, http.StatusOK, result)
}

// DeletePanel — DELETE /api/v1/panels/{idServer}.
func (h *APIHandler) DeletePanel(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromContext(r.Context())
	if id == nil {
		apierrors.Unauthorized(w, "Отсутствует личность в контексте")
		return
	}

	idServer := chi.URLParam(r, "idServer")
	if err := h.panels.Delete(r.Context(), id, idServer); err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  true,
		"message": "панель удалена",
	})
}

// createAdminPanelRequest — тело запроса создания admin-панели.
type createAdminPanelRequest struct {
	Username string `json:"username"`
}

// CreateAdminPanel — POST /api/v1/admin/panels.
// Успешный ответ внешнего API передаётся клиенту без изменений.
func (h *APIHandler) CreateAdminPanel(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromContext(r.Context())
	if id == nil {
		apierrors.Unauthorized(w, "Отсутствует личность в контексте")
		return
	}

	var req createAdminPanelRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	raw, err := h.panels.CreateAdmin(r.Context(), id, req.Username)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(raw)
}
