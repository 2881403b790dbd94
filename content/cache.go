// Package content serves the public category and article listings through
// an explicit query-state cache owned by the composition root. The web app
// used to keep this state in implicit module-level stores; here it is a
// struct with Invalidate and Refetch.
package content

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/khobor/portal/cms"
)

const (
	categoriesKey    = "cache:categories"
	articlesKeyBase  = "cache:articles"
	defaultCacheTTL  = 5 * time.Minute
	articleListLimit = 50
)

// Cache is a read-through cache over the CMS listing queries. Redis backs
// it when available; otherwise entries live in-process.
type Cache struct {
	CMS    *cms.Client
	Redis  *redis.Client
	Logger *logrus.Logger
	TTL    time.Duration

	mu    sync.RWMutex
	local map[string]localEntry
}

type localEntry struct {
	data      []byte
	expiresAt time.Time
}

func NewCache(client *cms.Client, rdb *redis.Client, logger *logrus.Logger, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{
		CMS:    client,
		Redis:  rdb,
		Logger: logger,
		TTL:    ttl,
		local:  make(map[string]localEntry),
	}
}

func articlesKey(categorySlug string) string {
	if categorySlug == "" {
		return articlesKeyBase
	}
	return articlesKeyBase + ":" + categorySlug
}

// Categories returns the cached category list, fetching from the CMS on a
// miss.
func (c *Cache) Categories(ctx context.Context) ([]cms.Category, error) {
	var categories []cms.Category
	if ok := c.get(ctx, categoriesKey, &categories); ok {
		return categories, nil
	}
	categories, err := c.CMS.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	c.put(ctx, categoriesKey, categories)
	return categories, nil
}

// Articles returns the cached newest-first article listing for a category
// slug; the empty slug means the front page.
func (c *Cache) Articles(ctx context.Context, categorySlug string) ([]cms.Article, error) {
	key := articlesKey(categorySlug)
	var articles []cms.Article
	if ok := c.get(ctx, key, &articles); ok {
		return articles, nil
	}
	articles, err := c.CMS.ListArticles(ctx, categorySlug, articleListLimit)
	if err != nil {
		return nil, err
	}
	c.put(ctx, key, articles)
	return articles, nil
}

// Invalidate drops every cached listing. The next read refetches.
func (c *Cache) Invalidate(ctx context.Context) {
	c.mu.Lock()
	c.local = make(map[string]localEntry)
	c.mu.Unlock()

	if c.Redis == nil {
		return
	}
	keys, err := c.Redis.Keys(ctx, articlesKeyBase+"*").Result()
	if err != nil {
		c.Logger.Printf("cache invalidate: %v", err)
		keys = nil
	}
	keys = append(keys, categoriesKey)
	if err := c.Redis.Del(ctx, keys...).Err(); err != nil {
		c.Logger.Printf("cache invalidate: %v", err)
	}
}

// Refetch invalidates and immediately rewarms the category list and front
// page.
func (c *Cache) Refetch(ctx context.Context) error {
	c.Invalidate(ctx)
	if _, err := c.Categories(ctx); err != nil {
		return err
	}
	_, err := c.Articles(ctx, "")
	return err
}

func (c *Cache) get(ctx context.Context, key string, out any) bool {
	if c.Redis != nil {
		raw, err := c.Redis.Get(ctx, key).Result()
		if err == nil {
			if jsonErr := json.Unmarshal([]byte(raw), out); jsonErr == nil {
				return true
			}
		} else if err != redis.Nil {
			c.Logger.Printf("cache read %s: %v", key, err)
		}
		return false
	}

	c.mu.RLock()
	entry, ok := c.local[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return false
	}
	return json.Unmarshal(entry.data, out) == nil
}

func (c *Cache) put(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		c.Logger.Printf("cache write %s: %v", key, err)
		return
	}
	if c.Redis != nil {
		if err := c.Redis.Set(ctx, key, data, c.TTL).Err(); err != nil {
			c.Logger.Printf("cache write %s: %v", key, err)
		}
		return
	}
	c.mu.Lock()
	c.local[key] = localEntry{data: data, expiresAt: time.Now().Add(c.TTL)}
	c.mu.Unlock()
}
