// Package cache is a TTL key/value cache on an embedded Badger database.
// Values are JSON encoded. Keys are plain strings and can be dropped by prefix.
package cache

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

const (
	gcInterval     = 10 * time.Minute
	gcDiscardRatio = 0.5

	// bumpAttempts bounds retries of a counter update that lost a
	// transaction conflict.
	bumpAttempts = 16
)

// Cache stores JSON values with a default TTL.
type Cache struct {
	db     *badger.DB
	ttl    time.Duration
	logger *slog.Logger

	// Serializes Bump calls made through this Cache.
	bumpMu sync.Mutex

	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// Options configure Open.
type Options struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path     string
	InMemory bool
	TTL      time.Duration
	Logger   *slog.Logger
}

// Open opens or creates a cache.
func Open(opts Options) (*Cache, error) {
	if opts.TTL <= 0 {
		return nil, errors.New("cache ttl must be positive")
	}

	bopts := badger.DefaultOptions(opts.Path)
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	}
	bopts.Logger = nil
	// Cached values are derived and can be recomputed; losing the tail on a
	// crash is fine.
	bopts.SyncWrites = false

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger cache: %w", err)
	}

	c := &Cache{
		db:     db,
		ttl:    opts.TTL,
		logger: opts.Logger,
		stop:   make(chan struct{}),
	}

	if !opts.InMemory {
		c.wg.Add(1)
		go c.runGC()
	}

	if c.logger != nil {
		c.logger.Info("cache opened", "path", opts.Path, "in_memory", opts.InMemory, "ttl", opts.TTL)
	}
	return c, nil
}

// TTL returns the default time to live.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Get decodes the value stored at key into dst.
// It reports false, with no error, when the key is absent or expired.
func (c *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dst)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	return true, nil
}

// Set stores v at key with the default TTL.
func (c *Cache) Set(ctx context.Context, key string, v any) error {
	return c.SetWithTTL(ctx, key, v, c.ttl)
}

// SetWithTTL stores v at key with an explicit TTL.
func (c *Cache) SetWithTTL(ctx context.Context, key string, v any, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}

	return c.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), data).WithTTL(ttl))
	})
}

// Delete removes a single key. A missing key is not an error.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// DeletePrefix removes every key starting with prefix and returns how many
// were removed.
func (c *Cache) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var keys [][]byte
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan prefix %s: %w", prefix, err)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	wb := c.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range keys {
		if err := wb.Delete(k); err != nil {
			return 0, fmt.Errorf("delete %s: %w", k, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, fmt.Errorf("flush deletes: %w", err)
	}
	return len(keys), nil
}

// Generation returns the counter stored at key, or 0 when it was never
// bumped. Counters have no TTL.
func (c *Cache) Generation(ctx context.Context, key string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var gen uint64
	err := c.db.View(func(txn *badger.Txn) error {
		var err error
		gen, err = readCounter(txn, []byte(key))
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("cache generation %s: %w", key, err)
	}
	return gen, nil
}

// Bump atomically increments the counter at key and returns the new value.
func (c *Cache) Bump(ctx context.Context, key string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	c.bumpMu.Lock()
	defer c.bumpMu.Unlock()

	k := []byte(key)
	for range bumpAttempts {
		var next uint64
		err := c.db.Update(func(txn *badger.Txn) error {
			cur, err := readCounter(txn, k)
			if err != nil {
				return err
			}
			next = cur + 1
			buf := make([]byte, 8)
			binary.BigEndian.PutUint64(buf, next)
			return txn.Set(k, buf)
		})
		if errors.Is(err, badger.ErrConflict) {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("cache bump %s: %w", key, err)
		}
		return next, nil
	}
	return 0, fmt.Errorf("cache bump %s: %w", key, badger.ErrConflict)
}

func readCounter(txn *badger.Txn, key []byte) (uint64, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var n uint64
	err = item.Value(func(val []byte) error {
		if len(val) != 8 {
			return fmt.Errorf("counter %s holds %d bytes", key, len(val))
		}
		n = binary.BigEndian.Uint64(val)
		return nil
	})
	return n, err
}

// Ping checks the cache accepts reads.
func (c *Cache) Ping(ctx context.Context) error {
	_, err := c.Get(ctx, "\x00ping", new(struct{}))
	return err
}

func (c *Cache) runGC() {
	defer c.wg.Done()

	ticker := time.NewTicker(gcInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			// Keep collecting while badger reports it rewrote a file.
			for {
				if err := c.db.RunValueLogGC(gcDiscardRatio); err != nil {
					break
				}
			}
		}
	}
}

// Close stops background GC and closes the database.
func (c *Cache) Close() error {
	var err error
	c.once.Do(func() {
		close(c.stop)
		c.wg.Wait()
		err = c.db.Close()
	})
	return err
}
