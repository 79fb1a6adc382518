package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type Options struct {
	Addr     string
	DB       int
	Password string
}

// OpenRedis connects and pings; the idempotency middleware needs a live store.
func OpenRedis(o Options) (*redis.Client, error) {
	r := redis.NewClient(&redis.Options{Addr: o.Addr, DB: o.DB, Password: o.Password})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		_ = r.Close()
		return nil, err
	}
	return r, nil
}
