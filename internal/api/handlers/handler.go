// handler.go — основной обработчик API PanelHub.
// Объединяет доменные обработчики и делегирует запросы в сервисный слой.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	apierrors "github.com/bigkaa/panelhub/internal/api/errors"
	"github.com/bigkaa/panelhub/internal/domain/model"
	"github.com/bigkaa/panelhub/internal/domain/policy"
	"github.com/bigkaa/panelhub/internal/ptero"
	"github.com/bigkaa/panelhub/internal/service"
)

// APIHandler — основной обработчик API PanelHub.
type APIHandler struct {
	health  *HealthHandler
	auth    *service.AuthService
	users   *service.UserService
	configs *service.ConfigService
	panels  *service.PanelService
	logger  *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
func NewAPIHandler(
	health *HealthHandler,
	auth *service.AuthService,
	users *service.UserService,
	configs *service.ConfigService,
	panels *service.PanelService,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		health:  health,
		auth:    auth,
		users:   users,
		configs: configs,
		panels:  panels,
		logger:  logger.With(slog.String("component", "api_handler")),
	}
}

// HealthLive — liveness probe (делегируется в HealthHandler).
func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

// HealthReady — readiness probe (делегируется в HealthHandler).
func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// GetMetrics — Prometheus метрики (делегируется в HealthHandler).
func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.health.GetMetrics(w, r)
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// decodeJSON разбирает тело запроса; ошибка — false и готовый 400 клиенту.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		apierrors.ValidationError(w, "некорректный JSON в теле запроса")
		return false
	}
	return true
}

// writeServiceError переводит ошибки сервисного слоя в HTTP-ответ.
// Отказ внешнего API (*ptero.RemoteError) передаётся клиенту как есть.
func (h *APIHandler) writeServiceError(w http.ResponseWriter, err error) {
	var remoteErr *ptero.RemoteError
	switch {
	case errors.As(err, &remoteErr):
		h.writeRemoteError(w, remoteErr)
	case errors.Is(err, service.ErrValidation):
		apierrors.ValidationError(w, err.Error())
	case errors.Is(err, policy.ErrDenied):
		apierrors.Forbidden(w, err.Error())
	case errors.Is(err, service.ErrNotFound):
		apierrors.NotFound(w, err.Error())
	case errors.Is(err, service.ErrConflict):
		apierrors.Conflict(w, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		apierrors.Unauthorized(w, err.Error())
	case errors.Is(err, service.ErrPartialFailure):
		apierrors.PartialFailure(w, err.Error())
	default:
		// Деталь — только в лог, клиенту generic 500.
		h.logger.Error("Необработанная ошибка сервисного слоя",
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(w, "внутренняя ошибка сервера")
	}
}

// writeRemoteError передаёт клиенту отказ внешнего API:
// статус и тело без изменений. Отказ со статусом 2xx (status:false
// в теле) отдаётся как 502 — успехом для клиента он быть не должен.
func (h *APIHandler) writeRemoteError(w http.ResponseWriter, e *ptero.RemoteError) {
	if len(e.Payload) == 0 {
		apierrors.RemoteError(w, e.Message)
		return
	}

	status := e.HTTPStatus
	if status < http.StatusBadRequest {
		status = http.StatusBadGateway
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Payload)
}

// --- Общие DTO ---

// userResponse — учётная запись в ответах API. Хэш пароля не отдаётся.
type userResponse struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Role        string     `json:"role"`
	AccountType string     `json:"accountType"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastLogin   *time.Time `json:"lastLogin,omitempty"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Username:    u.Username,
		Role:        u.Role,
		AccountType: u.AccountType,
		CreatedAt:   u.CreatedAt,
		LastLogin:   u.LastLogin,
	}
}
