package db

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// OpenFunc establishes a new store connection.
type OpenFunc func() (*Postgres, error)

// DSNOpener returns an OpenFunc dialing the given DSN.
func DSNOpener(dsn string) OpenFunc {
	return func() (*Postgres, error) {
		return Connect(dsn)
	}
}

// Cache memoizes a single established Postgres handle for the process.
// Concurrent first-time acquisitions collapse into one establishment
// attempt; a failed attempt is not cached, so the next caller retries.
type Cache struct {
	open  OpenFunc
	group singleflight.Group

	mu   sync.RWMutex
	conn *Postgres
}

func NewCache(open OpenFunc) *Cache {
	return &Cache{open: open}
}

// Acquire returns the cached connection, establishing it on first use.
// All callers waiting on the same establishment attempt receive the same
// handle or the same error.
func (c *Cache) Acquire(ctx context.Context) (*Postgres, error) {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()
	if conn != nil {
		return conn, nil
	}

	ch := c.group.DoChan("postgres", func() (any, error) {
		// A previous flight may have completed between the read above
		// and this call.
		c.mu.RLock()
		existing := c.conn
		c.mu.RUnlock()
		if existing != nil {
			return existing, nil
		}

		opened, err := c.open()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.conn = opened
		c.mu.Unlock()
		return opened, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Postgres), nil
	}
}

func (c *Cache) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}
