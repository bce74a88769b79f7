// auth.go — JWT middleware PanelHub.
// Извлекает Bearer token, проверяет подпись HS256 общим секретом,
// помещает доверенную личность (model.Identity) в контекст запроса.
// Проверки прав выполняются ниже по стеку через domain/policy.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	apierrors "github.com/bigkaa/panelhub/internal/api/errors"
	"github.com/bigkaa/panelhub/internal/domain/model"
	"github.com/bigkaa/panelhub/internal/token"
)

// contextKey — тип для ключей контекста (избегаем коллизий).
type contextKey string

const (
	// ContextKeyIdentity — доверенная личность запроса в контексте.
	ContextKeyIdentity contextKey = "identity"
)

// JWTAuth — middleware для JWT-аутентификации с общим секретом HS256.
type JWTAuth struct {
	secret []byte
	leeway time.Duration
	logger *slog.Logger
}

// NewJWTAuth создаёт JWT middleware.
// secret — общий секрет HS256 (PH_JWT_SECRET),
// leeway — допустимое отклонение времени при проверке (PH_JWT_LEEWAY).
func NewJWTAuth(secret []byte, leeway time.Duration, logger *slog.Logger) *JWTAuth {
	return &JWTAuth{
		secret: secret,
		leeway: leeway,
		logger: logger.With(slog.String("component", "jwt_auth")),
	}
}

// Middleware возвращает HTTP middleware для JWT-аутентификации.
// Отсутствующий, неверно оформленный, просроченный или подделанный
// токен — 401 без различения причин в ответе (причина — только в логе).
func (j *JWTAuth) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				apierrors.Unauthorized(w, "Отсутствует заголовок Authorization")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				apierrors.Unauthorized(w, "Неверный формат Authorization: ожидается Bearer <token>")
				return
			}

			tokenString := parts[1]
			if tokenString == "" {
				apierrors.Unauthorized(w, "Пустой Bearer token")
				return
			}

			claims, err := token.Verify(j.secret, j.leeway, tokenString)
			if err != nil {
				j.logger.Debug("JWT валидация не пройдена",
					slog.String("error", err.Error()),
					slog.String("remote_addr", r.RemoteAddr),
				)
				apierrors.Unauthorized(w, "Невалидный или просроченный токен")
				return
			}

			if claims.Subject == "" {
				apierrors.Unauthorized(w, "Отсутствует sub в токене")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyIdentity, claims.Identity())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// --- Context helpers ---

// IdentityFromContext извлекает личность запроса из контекста.
// Возвращает nil, если личность не найдена (запрос не прошёл middleware).
func IdentityFromContext(ctx context.Context) *model.Identity {
	id, _ := ctx.Value(ContextKeyIdentity).(*model.Identity)
	return id
}
