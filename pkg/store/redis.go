package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"

	"github.com/cnscp/cns-orchestrator/pkg/log"
	"github.com/cnscp/cns-orchestrator/pkg/orcherr"
)

// scanCount is the per-iteration hint passed to Redis SCAN.
const scanCount = 100

// RedisClient adapts a go-redis client to the store.Client contract. Keys
// are plain Redis strings — the flat cns/... key is the literal Redis key,
// mirroring the teacher's APP_DB/CONFIG_DB wrapper style but with STRING
// values rather than hashes.
type RedisClient struct {
	rdb *redis.Client
	db  int
}

// Connect dials the store and verifies connectivity. host/port/username/
// password are opaque credentials per §4.1 — this adapter never inspects
// or logs them.
func Connect(ctx context.Context, host string, port int, username, password string) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Username: username,
		Password: password,
		DB:       0,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, orcherr.New(orcherr.CategoryNotConnected, fmt.Sprintf("%s:%d", host, port), err)
	}

	return &RedisClient{rdb: rdb, db: 0}, nil
}

// scanKeys iterates Redis keys matching pattern using cursor-based SCAN
// rather than the blocking O(N) KEYS command.
func scanKeys(ctx context.Context, rdb *redis.Client, pattern string) ([]string, error) {
	var cursor uint64
	var keys []string
	for {
		batch, next, err := rdb.Scan(ctx, cursor, pattern, scanCount).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return keys, nil
}

// All implements store.Client.
func (c *RedisClient) All(ctx context.Context, prefix string) (map[string]string, error) {
	keys, err := scanKeys(ctx, c.rdb, prefix+"*")
	if err != nil {
		return nil, orcherr.New(orcherr.CategoryFailedToGetAll, prefix, err)
	}
	if len(keys) == 0 {
		return map[string]string{}, nil
	}

	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, orcherr.New(orcherr.CategoryFailedToGetAll, prefix, err)
	}

	out := make(map[string]string, len(keys))
	for i, k := range keys {
		if s, ok := vals[i].(string); ok {
			out[k] = s
		}
	}
	return out, nil
}

// Get implements store.Client.
func (c *RedisClient) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := c.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, orcherr.New(orcherr.CategoryFailedToGet, key, err)
	}
	return v, true, nil
}

// Put implements store.Client.
func (c *RedisClient) Put(ctx context.Context, key, value string) error {
	if err := c.rdb.Set(ctx, key, value, 0).Err(); err != nil {
		return orcherr.New(orcherr.CategoryFailedToPut, key, err)
	}
	return nil
}

// Watch implements store.Client using Redis keyspace notifications. It
// enables "KEA" (keyspace + keyevent, all commands) notifications each time
// it is called, subscribes to the set/del keyevent channels for this
// client's DB, and filters to keys under prefix. Its put events leave
// Event.Version empty.
func (c *RedisClient) Watch(ctx context.Context, prefix string) (<-chan Event, error) {
	if err := c.rdb.ConfigSet(ctx, "notify-keyspace-events", "KEA").Err(); err != nil {
		return nil, orcherr.New(orcherr.CategoryFailedToWatch, prefix, err)
	}

	setCh := fmt.Sprintf("__keyevent@%d__:set", c.db)
	delCh := fmt.Sprintf("__keyevent@%d__:del", c.db)

	pubsub := c.rdb.PSubscribe(ctx, setCh, delCh)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, orcherr.New(orcherr.CategoryFailedToWatch, prefix, err)
	}

	out := make(chan Event)
	go c.pump(ctx, pubsub, prefix, setCh, out)
	return out, nil
}

func (c *RedisClient) pump(ctx context.Context, pubsub *redis.PubSub, prefix, setCh string, out chan<- Event) {
	defer close(out)
	defer pubsub.Close()

	msgs := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			key := msg.Payload
			if !strings.HasPrefix(key, prefix) {
				continue
			}

			if msg.Channel == setCh {
				val, found, err := c.Get(ctx, key)
				if err != nil {
					log.WithKey(key).WithField("error", err).Warn("watch: failed to read value after set notification")
					continue
				}
				if !found {
					// Key was deleted between the notification and our read; skip.
					continue
				}
				out <- Event{Op: OpPut, Key: key, Value: val}
			} else {
				out <- Event{Op: OpDelete, Key: key}
			}
		}
	}
}

// Close implements store.Client.
func (c *RedisClient) Close() error {
	return c.rdb.Close()
}

var _ Client = (*RedisClient)(nil)
