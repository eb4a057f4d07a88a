package data

import (
	"log"

	"github.com/redis/go-redis/v9"
)

// MustRedis connects to redis or exits. A nil client is acceptable at call
// sites; pass "" to skip redis entirely.
func MustRedis(url string) *redis.Client {
	if url == "" {
		return nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	return redis.NewClient(opt)
}
