// users.go — административные обработчики управления учётными записями.
// /api/v1/admin/users — CRUD, только role=admin.
// Хэши паролей в ответах не появляются.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/panelhub/internal/api/errors"
	"github.com/bigkaa/panelhub/internal/api/middleware"
	"github.com/bigkaa/panelhub/internal/domain/policy"
	"github.com/bigkaa/panelhub/internal/service"
)

// requireAdmin проверяет личность запроса против политики администратора.
// Возвращает false, если ответ клиенту уже записан.
func (h *APIHandler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	id := middleware.IdentityFromContext(r.Context())
	if id == nil {
		apierrors.Unauthorized(w, "Отсутствует личность в контексте")
		return false
	}
	if err := policy.RequireAdmin(id); err != nil {
		apierrors.Forbidden(w, err.Error())
		return false
	}
	return true
}

// ListUsers — GET /api/v1/admin/users.
func (h *APIHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	users, err := h.users.List(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	result := make([]userResponse, 0, len(users))
	for _, u := range users {
		result = append(result, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, result)
}

// GetUser — GET /api/v1/admin/users/{id}.
func (h *APIHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	u, err := h.users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

// CreateUser — POST /api/v1/admin/users.
func (h *APIHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.users.Create(r.Context(), service.UserParams{
		Username:    req.Username,
		Password:    req.Password,
		Role:        req.Role,
		AccountType: req.AccountType,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(u))
}

// updateUserRequest — частичное обновление учётной записи.
// Отсутствующее поле не меняется.
type updateUserRequest struct {
	Username    *string `json:"username"`
	Password    *string `json:"password"`
	Role        *string `json:"role"`
	AccountType *string `json:"accountType"`
}

// UpdateUser — PUT /api/v1/admin/users/{id}.
func (h *APIHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	var req updateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.users.Update(r.Context(), chi.URLParam(r, "id"), service.UpdateUserParams{
		Username:    req.Username,
		Password:    req.Password,
		Role:        req.Role,
		AccountType: req.AccountType,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

// DeleteUser — DELETE /api/v1/admin/users/{id}.
func (h *APIHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	if err := h.users.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
