package shared

import (
	"context"
	"errors"
	"os"

	"github.com/lithammer/shortuuid/v4"
	"github.com/redis/go-redis/v9"
)

// ErrEntityNotFound is returned when no entity exists at the given keys.
var ErrEntityNotFound = errors.New("entity not found")

// ErrPreconditionFailed is returned when an upsert loses an optimistic
// concurrency race (the stored etag no longer matches the caller's).
var ErrPreconditionFailed = errors.New("etag precondition failed")

// TableClient is a Redis-backed record store with table-storage style
// addressing: entities live in hashes keyed by table, partition key and row
// key, and carry an etag field used as the optimistic concurrency token.
type TableClient struct {
	Config *TableConfig
	Ctx    context.Context
	rd     *redis.Client
}

type TableConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	DB       int
}

// Return the default configuration for Redis
func RedisDefaultConfig() *TableConfig {
	return &TableConfig{
		Host:     os.Getenv("REDIS_HOST"),
		Port:     os.Getenv("REDIS_PORT"),
		Username: os.Getenv("REDIS_USERNAME"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	}
}

func NewTableClient(config *TableConfig) *TableClient {
	return &TableClient{
		Config: config,
		Ctx:    context.Background(),
	}
}

// Connect to the Redis server
// Return error if connection failed
func (c *TableClient) Connect() error {
	c.rd = redis.NewClient(&redis.Options{
		Addr:     c.Config.Host + ":" + c.Config.Port,
		Username: c.Config.Username,
		Password: c.Config.Password,
		DB:       c.Config.DB,
	})

	_, err := c.rd.Ping(c.Ctx).Result()
	return err
}

func (c *TableClient) Close() {
	if c.rd != nil {
		c.rd.Close()
	}
}

func entityKey(table, partitionKey, rowKey string) string {
	return table + ":" + partitionKey + ":" + rowKey
}

// GetEntity fetches all fields of the entity, ErrEntityNotFound when absent.
func (c *TableClient) GetEntity(ctx context.Context, table, partitionKey, rowKey string) (map[string]string, error) {
	fields, err := c.rd.HGetAll(ctx, entityKey(table, partitionKey, rowKey)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, ErrEntityNotFound
	}
	return fields, nil
}

// UpsertEntity writes the entity fields and returns the new etag. When the
// caller passes a non-empty etag the write only succeeds while the stored
// etag still matches; a lost race surfaces as ErrPreconditionFailed.
func (c *TableClient) UpsertEntity(ctx context.Context, table, partitionKey, rowKey string, fields map[string]interface{}, etag string) (string, error) {
	key := entityKey(table, partitionKey, rowKey)
	newEtag := shortuuid.New()
	fields["etag"] = newEtag

	if etag == "" {
		if err := c.rd.HSet(ctx, key, fields).Err(); err != nil {
			return "", err
		}
		return newEtag, nil
	}

	err := c.rd.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.HGet(ctx, key, "etag").Result()
		if err != nil && err != redis.Nil {
			return err
		}
		if current != etag {
			return ErrPreconditionFailed
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, fields)
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return "", ErrPreconditionFailed
	}
	if err != nil {
		return "", err
	}
	return newEtag, nil
}
