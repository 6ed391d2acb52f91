package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"order_backend/internal/domain/customer"
	"order_backend/internal/domain/repository"
	"order_backend/pkg/logger"
)

const defaultCustomerTTL = 5 * time.Minute

type cachedCustomer struct {
	ID      int64  `json:"id"`
	Handle  string `json:"handle"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"is_admin"`
}

// CustomerCache is a read-through cache in front of a CustomerRepository.
// Misses are not cached. Redis failures fall back to the wrapped store, and
// concurrent misses for one key share a single store lookup.
type CustomerCache struct {
	client goredis.Cmdable
	group  singleflight.Group
	next   repository.CustomerRepository
	ttl    time.Duration
	log    logger.Logger
}

var _ repository.CustomerRepository = (*CustomerCache)(nil)

func NewCustomerCache(client goredis.Cmdable, next repository.CustomerRepository, ttl time.Duration, log logger.Logger) *CustomerCache {
	if ttl <= 0 {
		ttl = defaultCustomerTTL
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &CustomerCache{client: client, next: next, ttl: ttl, log: log}
}

func handleKey(handle string) string {
	return "customer:handle:" + strings.ToLower(strings.TrimSpace(handle))
}

func idKey(id int64) string {
	return "customer:id:" + strconv.FormatInt(id, 10)
}

func (c *CustomerCache) FindByID(ctx context.Context, id int64) (*customer.Customer, error) {
	return c.readThrough(ctx, idKey(id), func() (*customer.Customer, error) {
		return c.next.FindByID(ctx, id)
	})
}

func (c *CustomerCache) FindByHandle(ctx context.Context, handle string) (*customer.Customer, error) {
	return c.readThrough(ctx, handleKey(handle), func() (*customer.Customer, error) {
		return c.next.FindByHandle(ctx, handle)
	})
}

func (c *CustomerCache) readThrough(ctx context.Context, key string, load func() (*customer.Customer, error)) (*customer.Customer, error) {
	if cust, ok := c.get(ctx, key); ok {
		return cust, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		cust, err := load()
		if err != nil || cust == nil {
			return cust, err
		}
		c.set(ctx, cust)
		return cust, nil
	})
	if err != nil {
		return nil, err
	}
	cust, _ := v.(*customer.Customer)
	if cust == nil {
		return nil, nil
	}
	cp := *cust
	return &cp, nil
}

func (c *CustomerCache) get(ctx context.Context, key string) (*customer.Customer, bool) {
	value, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, false
	}
	if err != nil {
		c.log.Warn("customer cache read failed", logger.String("key", key), logger.Error(err))
		return nil, false
	}

	var cc cachedCustomer
	if err := json.Unmarshal([]byte(value), &cc); err != nil {
		c.log.Warn("customer cache entry is corrupt", logger.String("key", key), logger.Error(err))
		return nil, false
	}
	return &customer.Customer{ID: cc.ID, Handle: cc.Handle, Name: cc.Name, IsAdmin: cc.IsAdmin}, true
}

// set writes the entry under both keys.
func (c *CustomerCache) set(ctx context.Context, cust *customer.Customer) {
	payload, err := json.Marshal(cachedCustomer{ID: cust.ID, Handle: cust.Handle, Name: cust.Name, IsAdmin: cust.IsAdmin})
	if err != nil {
		return
	}
	for _, key := range []string{idKey(cust.ID), handleKey(cust.Handle)} {
		if err := c.client.Set(ctx, key, string(payload), c.ttl).Err(); err != nil {
			c.log.Warn("customer cache write failed", logger.String("key", key), logger.Error(err))
			return
		}
	}
}
