package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/magabrotheeeer/dues-ledger/internal/models"
)

// ActorClaims — содержимое токена: subject хранит идентификатор действующего лица.
type ActorClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken выпускает токен. В проде токены выпускает сервис авторизации,
// здесь метод нужен для локальной отладки и тестов.
func (j *MakerImpl) GenerateToken(actorID, role string) (string, error) {
	now := time.Now()
	claims := ActorClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actorID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

// ParseToken проверяет подпись и срок действия токена.
func (j *MakerImpl) ParseToken(tokenStr string) (*ActorClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &ActorClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*ActorClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%s: empty subject", op)
	}
	return claims, nil
}

// ParseActor разбирает токен и выдаёт действующее лицо с возможностями его роли.
func (j *MakerImpl) ParseActor(tokenStr string) (models.Actor, error) {
	claims, err := j.ParseToken(tokenStr)
	if err != nil {
		return models.Actor{}, err
	}
	return models.Actor{
		ID:           claims.Subject,
		Role:         claims.Role,
		Capabilities: models.CapabilitiesForRole(claims.Role),
	}, nil
}
