package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "inventory:idempotency:"

// ErrKeyInUse la llave ya fue reservada por otra petición dentro del TTL.
var ErrKeyInUse = errors.New("idempotency key ya utilizada")

// IdempotencyStore reserva llaves Idempotency-Key en Redis con un TTL.
type IdempotencyStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewIdempotencyStore construye el store. ttl <= 0 usa 24h.
func NewIdempotencyStore(client redis.UniversalClient, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Reserve marca la llave del negocio como usada. Devuelve ErrKeyInUse si ya existía.
func (s *IdempotencyStore) Reserve(ctx context.Context, businessID, key string) error {
	if s == nil || s.client == nil {
		return nil
	}
	if key == "" {
		return errors.New("idempotency key requerida")
	}
	ok, err := s.client.SetNX(ctx, redisKey(businessID, key), time.Now().UTC().Format(time.RFC3339), s.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrKeyInUse
	}
	return nil
}

// Release libera la llave para que el cliente pueda reintentar una operación fallida.
func (s *IdempotencyStore) Release(ctx context.Context, businessID, key string) error {
	if s == nil || s.client == nil || key == "" {
		return nil
	}
	return s.client.Del(ctx, redisKey(businessID, key)).Err()
}

func redisKey(businessID, key string) string {
	return keyPrefix + businessID + ":" + key
}
