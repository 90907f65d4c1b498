// Package cache claves de idempotencia sobre Redis para las rutas que mutan stock.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// StoredResponse respuesta HTTP guardada para repetirla ante un reintento con la misma clave.
// Status 0 indica que la primera petición sigue en curso.
type StoredResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// InProgress indica que la clave está reservada pero aún sin respuesta.
func (r *StoredResponse) InProgress() bool { return r.Status == 0 }

// IdempotencyStore implementación sobre Redis.
type IdempotencyStore struct {
	client redis.Cmdable // interfaz: cliente simple o cluster
	prefix string
}

// NewIdempotencyStore conecta a Redis y verifica con PING.
func NewIdempotencyStore(ctx context.Context, addr, password string, db int) (*IdempotencyStore, *redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewIdempotencyStoreWithClient(client), client, nil
}

// NewIdempotencyStoreWithClient usa un cliente ya construido.
func NewIdempotencyStoreWithClient(client redis.Cmdable) *IdempotencyStore {
	return &IdempotencyStore{client: client, prefix: "stock-ledger:idem:"}
}

func (s *IdempotencyStore) key(k string) string { return s.prefix + k }

// Reserve toma la clave con SETNX. false = ya existía (en curso o completada).
func (s *IdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	data, err := json.Marshal(StoredResponse{})
	if err != nil {
		return false, err
	}
	ok, err := s.client.SetNX(ctx, s.key(key), data, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("reserve idempotency key: %w", err)
	}
	return ok, nil
}

// Load devuelve lo guardado para la clave o nil si no existe.
func (s *IdempotencyStore) Load(ctx context.Context, key string) (*StoredResponse, error) {
	val, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("load idempotency key: %w", err)
	}
	var out StoredResponse
	if err := json.Unmarshal(val, &out); err != nil {
		return nil, fmt.Errorf("decode idempotency key: %w", err)
	}
	return &out, nil
}

// Save guarda la respuesta final conservando el TTL.
func (s *IdempotencyStore) Save(ctx context.Context, key string, resp StoredResponse, ttl time.Duration) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("save idempotency key: %w", err)
	}
	return nil
}

// Release libera la clave (la petición falló y puede reintentarse).
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}
