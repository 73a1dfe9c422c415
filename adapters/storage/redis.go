package storage

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"freight-cost/internal/errors"
)

// DefaultRedisPrefix namespaces every key the redis backend writes
const DefaultRedisPrefix = "freight-cost"

// RedisStore keeps quotes as JSON values indexed by sorted sets scored on creation time
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// RedisOptions configures the redis backend
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// NewRedisStore connects to redis
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	if opts.Addr == "" {
		return nil, errors.New(errors.TypeConfig, "redis backend requires an address")
	}
	if opts.Prefix == "" {
		opts.Prefix = DefaultRedisPrefix
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, errors.Storage("redis connection failed", err)
	}

	return &RedisStore{rdb: rdb, prefix: opts.Prefix}, nil
}

func (s *RedisStore) quoteKey(id string) string {
	return fmt.Sprintf("%s:quote:%s", s.prefix, id)
}

func (s *RedisStore) indexKey() string {
	return s.prefix + ":quotes"
}

func (s *RedisStore) routeKey(r Route) string {
	return fmt.Sprintf("%s:route:%s", s.prefix, r.Key())
}

func (s *RedisStore) Save(ctx context.Context, quote *StoredQuote) error {
	prepare(quote)

	data, err := json.Marshal(quote)
	if err != nil {
		return errors.Storage("failed to marshal quote", err)
	}

	member := redis.Z{Score: float64(quote.CreatedAt.UnixMilli()), Member: quote.ID}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.quoteKey(quote.ID), data, 0)
		pipe.ZAdd(ctx, s.indexKey(), member)
		pipe.ZAdd(ctx, s.routeKey(quote.Route), member)
		return nil
	})
	if err != nil {
		return errors.Storage("failed to save quote", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*StoredQuote, error) {
	data, err := s.rdb.Get(ctx, s.quoteKey(id)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, errors.NotFound("quote", id)
	}
	if err != nil {
		return nil, errors.Storage("failed to get quote", err)
	}

	var quote StoredQuote
	if err := json.Unmarshal(data, &quote); err != nil {
		return nil, errors.Storage("failed to unmarshal quote", err)
	}
	return &quote, nil
}

func (s *RedisStore) List(ctx context.Context, filter *ListFilter) ([]*StoredQuote, error) {
	index := s.indexKey()
	if filter != nil && filter.Route != nil {
		index = s.routeKey(*filter.Route)
	}

	ids, err := s.rdb.ZRevRange(ctx, index, 0, -1).Result()
	if err != nil {
		return nil, errors.Storage("failed to list quotes", err)
	}

	quotes := []*StoredQuote{}
	for _, id := range ids {
		quote, err := s.Get(ctx, id)
		if errors.IsType(err, errors.TypeNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if filter.matches(quote) {
			quotes = append(quotes, quote)
		}
	}
	return filter.page(quotes), nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	quote, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.quoteKey(id))
		pipe.ZRem(ctx, s.indexKey(), id)
		pipe.ZRem(ctx, s.routeKey(quote.Route), id)
		return nil
	})
	if err != nil {
		return errors.Storage("failed to delete quote", err)
	}
	return nil
}

func (s *RedisStore) GetLatest(ctx context.Context, route Route) (*StoredQuote, error) {
	quotes, err := s.List(ctx, &ListFilter{Route: &route, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(quotes) == 0 {
		return nil, errors.NotFound("quote for route", route.Key())
	}
	return quotes[0], nil
}

func (s *RedisStore) Compare(ctx context.Context, oldID, newID string) (*CompareResult, error) {
	oldQuote, err := s.Get(ctx, oldID)
	if err != nil {
		return nil, err
	}
	newQuote, err := s.Get(ctx, newID)
	if err != nil {
		return nil, err
	}
	return compare(oldQuote, newQuote), nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

var _ Store = (*RedisStore)(nil)
