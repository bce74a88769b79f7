// configs.go — административные обработчики конфигураций провижининга.
// /api/v1/admin/configs — CRUD, только role=admin.
// Тип панели — ключ: GET ?type= возвращает одну конфигурацию,
// PUT берёт тип из тела, DELETE — из ?type=.
package handlers

import (
	"net/http"
	"time"

	apierrors "github.com/bigkaa/panelhub/internal/api/errors"
	"github.com/bigkaa/panelhub/internal/domain/model"
)

// configRequest — тело запроса создания/обновления конфигурации.
type configRequest struct {
	Type   string `json:"type"`
	Domain string `json:"domain"`
	PTLA   string `json:"ptla"`
	PTLC   string `json:"ptlc"`
	EggID  string `json:"eggId"`
	NestID string `json:"nestId"`
	Loc    string `json:"loc"`
}

func (req *configRequest) toModel() *model.PanelConfig {
	return &model.PanelConfig{
		Type:   req.Type,
		Domain: req.Domain,
		PTLA:   req.PTLA,
		PTLC:   req.PTLC,
		EggID:  req.EggID,
		NestID: req.NestID,
		Loc:    req.Loc,
	}
}

// configResponse — конфигурация в ответах API.
// Ключи внешнего API отдаются: endpoint доступен только администраторам.
type configResponse struct {
	Type      string    `json:"type"`
	Domain    string    `json:"domain"`
	PTLA      string    `json:"ptla"`
	PTLC      string    `json:"ptlc"`
	EggID     string    `json:"eggId"`
	NestID    string    `json:"nestId"`
	Loc       string    `json:"loc"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toConfigResponse(c *model.PanelConfig) configResponse {
	return configResponse{
		Type:      c.Type,
		Domain:    c.Domain,
		PTLA:      c.PTLA,
		PTLC:      c.PTLC,
		EggID:     c.EggID,
		NestID:    c.NestID,
		Loc:       c.Loc,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// GetConfigs — GET /api/v1/admin/configs[?type=].
// Без ?type= — список всех конфигураций, с ?type= — одна.
func (h *APIHandler) GetConfigs(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	if panelType := r.URL.Query().Get("type"); panelType != "" {
		c, err := h.configs.Get(r.Context(), panelType)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toConfigResponse(c))
		return
	}

	configs, err := h.configs.List(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	result := make([]configResponse, 0, len(configs))
	for _, c := range configs {
		result = append(result, toConfigResponse(c))
	}
	writeJSON(w, http.StatusOK, result)
}

// CreateConfig — POST /api/v1/admin/configs.
func (h *APIHandler) CreateConfig(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	var req configRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c := req.toModel()
	if err := h.configs.Create(r.Context(), c); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toConfigResponse(c))
}

// UpdateConfig — PUT /api/v1/admin/configs (тип — в теле).
func (h *APIHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	var req configRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c := req.toModel()
	if err := h.configs.Update(r.Context(), c); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toConfigResponse(c))
}

// DeleteConfig — DELETE /api/v1/admin/configs?type=.
func (h *APIHandler) DeleteConfig(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	panelType := r.URL.Query().Get("type")
	if panelType == "" {
		apierrors.ValidationError(w, "параметр type обязателен")
		return
	}

	if err := h.configs.Delete(r.Context(), panelType); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
