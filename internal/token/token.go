// Пакет token — выпуск и проверка JWT PanelHub.
// Подпись HS256 общим секретом (PH_JWT_SECRET); пакет используется
// сервисом аутентификации (выпуск) и JWT middleware (проверка),
// чтобы форма claims была одна на обоих концах.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bigkaa/panelhub/internal/domain/model"
)

// Claims — полезная нагрузка токена PanelHub.
type Claims struct {
	Username    string `json:"username"`
	Role        string `json:"role"`
	AccountType string `json:"account_type"`
	jwt.RegisteredClaims
}

// Identity преобразует проверенные claims в доверенную личность запроса.
func (c *Claims) Identity() *model.Identity {
	return &model.Identity{
		ID:          c.Subject,
		Username:    c.Username,
		Role:        c.Role,
		AccountType: c.AccountType,
	}
}

// Issue выпускает подписанный HS256-токен для учётной записи.
func Issue(secret []byte, ttl time.Duration, u *model.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		Username:    u.Username,
		Role:        u.Role,
		AccountType: u.AccountType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("подпись токена: %w", err)
	}
	return signed, nil
}

// Verify проверяет подпись и срок действия токена.
// Принимается только HS256; токен без exp отклоняется.
func Verify(secret []byte, leeway time.Duration, tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(_ *jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(leeway),
	)
	if err != nil {
		return nil, fmt.Errorf("проверка токена: %w", err)
	}
	return claims, nil
}
