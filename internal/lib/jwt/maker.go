// Package jwt разбирает токены, выпущенные сервисом авторизации портала,
// и превращает их в models.Actor.
package jwt

import (
	"time"

	"github.com/magabrotheeeer/dues-ledger/internal/models"
)

// Maker выпускает и проверяет токены действующих лиц.
type Maker interface {
	GenerateToken(actorID, role string) (string, error)
	ParseToken(tokenStr string) (*ActorClaims, error)
	ParseActor(tokenStr string) (models.Actor, error)
}

// MakerImpl подписывает токены HMAC-ключом.
type MakerImpl struct {
	secretKey string
	tokenTTL  time.Duration
}

// NewJWTMaker создаёт MakerImpl. ttl используется только при выпуске токенов.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
