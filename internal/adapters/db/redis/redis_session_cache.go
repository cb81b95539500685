package redis

import (
	"context"
	"encoding/json"
	"fmt"

	customErrors "github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/auth/model"
	"github.com/redis/go-redis/v9"
)

// SchemaVersion is bumped whenever model.User changes shape in a way an
// older snapshot cannot be read back faithfully.
const SchemaVersion = 1

const keyPrefix = "session:"

type envelope struct {
	V    int        `json:"v"`
	User model.User `json:"user"`
}

type RedisSessionCache struct {
	client *redis.Client
}

func NewRedisSessionCache(client *redis.Client) *RedisSessionCache {
	return &RedisSessionCache{
		client: client,
	}
}

func key(userID string) string {
	return keyPrefix + userID
}

func (r *RedisSessionCache) Get(ctx context.Context, userID string) (model.User, error) {
	val, err := r.client.Get(ctx, key(userID)).Bytes()
	switch {
	case err == redis.Nil:
		return model.User{}, customErrors.ErrSessionNotFound
	case err != nil:
		return model.User{}, customErrors.WrapInternal(err, "session get")
	}

	return decode(val)
}

// Set stores the snapshot without expiry; the entry lives until Del or overwrite.
func (r *RedisSessionCache) Set(ctx context.Context, user model.User) error {
	data, err := encode(user)
	if err != nil {
		return customErrors.WrapInternal(err, "session encode")
	}
	if err := r.client.Set(ctx, key(user.ID.String()), data, 0).Err(); err != nil {
		return customErrors.WrapInternal(err, "session set")
	}
	return nil
}

func (r *RedisSessionCache) Del(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, key(userID)).Err(); err != nil {
		return customErrors.WrapInternal(err, "session del")
	}
	return nil
}

func encode(u model.User) ([]byte, error) {
	return json.Marshal(envelope{V: SchemaVersion, User: u})
}

// decode treats unreadable or foreign-version entries as absent sessions.
func decode(data []byte) (model.User, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return model.User{}, fmt.Errorf("%w: unreadable entry", customErrors.ErrSessionNotFound)
	}
	if env.V != SchemaVersion {
		return model.User{}, fmt.Errorf("%w: stale entry v=%d", customErrors.ErrSessionNotFound, env.V)
	}
	return env.User, nil
}
