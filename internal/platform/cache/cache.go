// Package cache implements the shared read cache with derived invalidation.
//
// Every cached read is keyed by (bucket, filter parts, bucket version). Mutations
// never touch individual keys: they bump the bucket version, which orphans every
// key cut under the old version. Mutation-to-bucket dependencies are declared once
// up front so call sites invalidate by mutation name instead of enumerating buckets.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Bucket names for every cached resource.
const (
	BucketOrders             = "orders"
	BucketShortages          = "shortages"
	BucketDriverTransactions = "driver_transactions"
	BucketTrucks             = "trucks"
	BucketDrivers            = "drivers"
	BucketCustomers          = "customers"
	BucketDocuments          = "documents"
	BucketInventory          = "inventory"
	BucketDepots             = "depots"
	BucketPayments           = "payments"
	BucketExpenses           = "expenses"
	BucketHaulagePayments    = "haulage_payments"
	BucketCementPayments     = "cement_payments"
	BucketWallets            = "wallets"
	BucketWalletTransactions = "wallet_transactions"
	BucketReports            = "reports"
)

// DefaultTTL is the freshness window for cached reads.
const DefaultTTL = 30 * time.Second

// ErrUnknownMutation is returned when invalidating an undeclared mutation.
var ErrUnknownMutation = errors.New("cache: mutation has no declared buckets")

// Service wraps Redis based caching with per-bucket versioning.
type Service struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
	deps   map[string][]string
}

// NewClient creates a new Redis client.
func NewClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("platform/cache: ping: %w", err)
	}

	return client, nil
}

// New instantiates the cache service.
func New(client *redis.Client, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{client: client, ttl: ttl, deps: make(map[string][]string)}
}

// Declare registers the buckets a mutation invalidates. Re-declaring replaces the list.
func (c *Service) Declare(mutation string, buckets ...string) {
	if c == nil {
		return
	}
	c.deps[mutation] = buckets
}

// Declared returns the buckets registered for a mutation.
func (c *Service) Declared(mutation string) []string {
	if c == nil {
		return nil
	}
	return c.deps[mutation]
}

func versionKey(bucket string) string {
	return "cache:" + bucket + ":version"
}

// Version returns the current version for a bucket, initialising when missing.
func (c *Service) Version(ctx context.Context, bucket string) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, versionKey(bucket)).Int64()
	if err == redis.Nil {
		if err := c.client.Set(ctx, versionKey(bucket), 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// Key composes a cache key from bucket, filter parts and the bucket version.
func (c *Service) Key(ctx context.Context, bucket string, parts ...string) (string, error) {
	joined := bucket
	if len(parts) > 0 {
		joined += ":" + strings.Join(parts, ":")
	}
	if c == nil || c.client == nil {
		return joined, nil
	}
	ver, err := c.Version(ctx, bucket)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:v%d", joined, ver), nil
}

// FetchJSON loads a cached value or populates it using the loader. Concurrent
// fetches for the same key share a single loader call. A failed loader is retried
// once before the error is surfaced.
func (c *Service) FetchJSON(ctx context.Context, bucket string, parts []string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	if loader == nil {
		return errors.New("cache: loader required")
	}
	load := func(ctx context.Context) (interface{}, error) {
		value, err := loader(ctx)
		if err != nil {
			value, err = loader(ctx)
		}
		return value, err
	}
	if c == nil || c.client == nil {
		value, err := load(ctx)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, dest)
	}

	key, err := c.Key(ctx, bucket, parts...)
	if err != nil {
		return err
	}

	ch := c.group.DoChan(key, func() (interface{}, error) {
		payload, err := c.client.Get(ctx, key).Bytes()
		if err == nil {
			return payload, nil
		}
		if err != redis.Nil {
			return nil, err
		}
		value, err := load(ctx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			return nil, err
		}
		return raw, nil
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return res.Err
		}
		return json.Unmarshal(res.Val.([]byte), dest)
	}
}

// Invalidate bumps the version of each bucket, orphaning all keys under it.
func (c *Service) Invalidate(ctx context.Context, buckets ...string) error {
	if c == nil || c.client == nil {
		return nil
	}
	for _, bucket := range buckets {
		if err := c.client.Incr(ctx, versionKey(bucket)).Err(); err != nil {
			return fmt.Errorf("cache: invalidate %s: %w", bucket, err)
		}
	}
	return nil
}

// InvalidateFor invalidates every bucket declared for the mutation.
func (c *Service) InvalidateFor(ctx context.Context, mutation string) error {
	if c == nil || c.client == nil {
		return nil
	}
	buckets, ok := c.deps[mutation]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMutation, mutation)
	}
	return c.Invalidate(ctx, buckets...)
}
