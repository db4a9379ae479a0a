package redisrepo

import "github.com/redis/go-redis/v9"

type RedisRepository struct {
	Default Default
}

// New returns nil given a nil client; callers treat a nil repository as
// "caching disabled".
func New(rdb *redis.Client) *RedisRepository {
	if rdb == nil {
		return nil
	}
	return &RedisRepository{
		Default: newDefaultRepo(rdb),
	}
}
