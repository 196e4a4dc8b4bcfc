package cache

import (
	"context"
	"errors"
	"time"

	lowimpl "github.com/redis/go-redis/v9"
)

// RedisConf configures the Redis store.
type RedisConf struct {
	Addr        string
	Password    string
	DB          int
	TTL         time.Duration // 0 keeps entries forever
	DialTimeout time.Duration
}

// Redis is a Store backed by a Redis server.
type Redis struct {
	Conf RedisConf

	internal *lowimpl.Client
}

var _ Store = (*Redis)(nil)

// NewRedis creates a Redis store. No connection is made until first use.
func NewRedis(conf RedisConf) *Redis {
	return &Redis{
		Conf: conf,
		internal: lowimpl.NewClient(&lowimpl.Options{
			Addr:        conf.Addr,
			Password:    conf.Password,
			DB:          conf.DB,
			DialTimeout: conf.DialTimeout,
		}),
	}
}

// Ping checks that the server is reachable.
func (r *Redis) Ping(ctx context.Context) error {
	return r.internal.Ping(ctx).Err()
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.internal.Get(ctx, key).Bytes()
	if errors.Is(err, lowimpl.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, val []byte) error {
	return r.internal.Set(ctx, key, val, r.Conf.TTL).Err()
}

// Close releases the connection pool.
func (r *Redis) Close() error {
	if r.internal == nil {
		return nil
	}
	return r.internal.Close()
}
