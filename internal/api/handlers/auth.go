// auth.go — обработчики публичных endpoints аутентификации.
// POST /api/v1/auth/register — создание учётной записи.
// POST /api/v1/auth/login — проверка пароля и выпуск JWT.
package handlers

import (
	"net/http"

	"github.com/bigkaa/panelhub/internal/service"
)

// registerRequest — тело запроса регистрации.
type registerRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	AccountType string `json:"accountType"`
}

// Register — POST /api/v1/auth/register.
func (h *APIHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.auth.Register(r.Context(), service.UserParams{
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

// loginRequest — тело запроса входа.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse — ответ успешного входа.
type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

// Login — POST /api/v1/auth/login.
func (h *APIHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token: result.Token,
		User:  toUserResponse(result.User),
	})
}
