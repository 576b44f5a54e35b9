package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var errBadRequestAt = errors.New("X-Request-At must be epoch (s/ms) or RFC3339 with timezone")

func bodyHash(b []byte) string { s := sha256.Sum256(b); return hex.EncodeToString(s[:]) }

func nowUTC() time.Time { return time.Now().UTC() }

func buildKey(method, path, callerID, idemKey string) string {
	return strings.Join([]string{"idemp", strings.ToLower(method), path, callerID, idemKey}, ":")
}

// validKey accepts a canonical UUID or its 32-hex form.
func validKey(k string) bool {
	k = strings.TrimSpace(k)
	if len(k) != 32 && len(k) != 36 {
		return false
	}
	_, err := uuid.Parse(k)
	return err == nil
}

// parseRequestAt reads epoch seconds, epoch milliseconds or an RFC3339
// timestamp that carries a zone. Naive local timestamps are rejected.
func parseRequestAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("missing X-Request-At")
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, errBadRequestAt
	}
	return t.UTC(), nil
}

// entryStore keeps idempotency entries in Redis: reserve takes the
// in-progress lock, commit stores the final response, release drops it.
type entryStore struct{ rdb *redis.Client }

func (s entryStore) reserve(ctx context.Context, key string, e idempEntry) (bool, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return false, err
	}
	return s.rdb.SetNX(ctx, key, payload, provisionalLockTTL).Result()
}

func (s entryStore) load(ctx context.Context, key string) (idempEntry, error) {
	var e idempEntry
	v, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return e, err
	}
	return e, json.Unmarshal(v, &e)
}

func (s entryStore) commit(ctx context.Context, key string, e idempEntry, ttl time.Duration) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, payload, ttl).Err()
}

func (s entryStore) release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
