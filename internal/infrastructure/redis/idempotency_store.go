package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "idempotency:"

// Estados de una llave de idempotencia.
const (
	StatePending   = "pending"
	StateCompleted = "completed"
)

// ErrInProgress otra petición con la misma llave aún no termina.
var ErrInProgress = errors.New("idempotency: petición en curso con la misma llave")

// Record respuesta guardada para una llave.
type Record struct {
	State       string `json:"state"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// IdempotencyStore reserva llaves con SETNX y guarda la respuesta final con TTL.
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyStore construye el store. ttl <= 0 usa 24h.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

func storeKey(key string) string { return keyPrefix + key }

// Begin reserva la llave. Si ya existe una respuesta completa la devuelve para repetirla;
// si la llave está reservada por otra petición devuelve ErrInProgress.
func (s *IdempotencyStore) Begin(ctx context.Context, key string) (*Record, error) {
	pending, err := json.Marshal(Record{State: StatePending})
	if err != nil {
		return nil, err
	}
	ok, err := s.client.SetNX(ctx, storeKey(key), pending, s.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("idempotency: reservar llave: %w", err)
	}
	if ok {
		return nil, nil
	}

	raw, err := s.client.Get(ctx, storeKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		// expiró entre SETNX y GET; se trata como reservada por otra petición
		return nil, ErrInProgress
	}
	if err != nil {
		return nil, fmt.Errorf("idempotency: leer llave: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("idempotency: decodificar registro: %w", err)
	}
	if rec.State != StateCompleted {
		return nil, ErrInProgress
	}
	return &rec, nil
}

// Complete guarda la respuesta final asociada a la llave.
func (s *IdempotencyStore) Complete(ctx context.Context, key string, status int, contentType string, body []byte) error {
	raw, err := json.Marshal(Record{State: StateCompleted, Status: status, ContentType: contentType, Body: body})
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, storeKey(key), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency: guardar respuesta: %w", err)
	}
	return nil
}

// Release libera la llave para permitir reintentos (la operación falló).
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, storeKey(key)).Err(); err != nil {
		return fmt.Errorf("idempotency: liberar llave: %w", err)
	}
	return nil
}
