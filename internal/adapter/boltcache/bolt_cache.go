package boltcache

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"notewise/internal/domain"

	bolt "go.etcd.io/bbolt"
)

var bucketName = []byte("notewise")

// expiryHeader is the size of the big-endian unix-nano deadline stored in
// front of every value. A zero deadline never expires.
const expiryHeader = 8

// BoltCache implements domain.Cache on a local bbolt file. The CLI uses it
// so repeated runs over the same PDF reuse extracted text and flow results
// without a Redis server.
type BoltCache struct {
	db  *bolt.DB
	now func() time.Time
}

// Open creates the parent directory and the bucket when missing.
func Open(path string) (*BoltCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory for BoltDB: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open BoltDB: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &BoltCache{db: db, now: time.Now}, nil
}

func (c *BoltCache) encode(value []byte, expiration time.Duration) []byte {
	buf := make([]byte, expiryHeader+len(value))
	if expiration > 0 {
		binary.BigEndian.PutUint64(buf, uint64(c.now().Add(expiration).UnixNano()))
	}
	copy(buf[expiryHeader:], value)
	return buf
}

func (c *BoltCache) expired(raw []byte) bool {
	deadline := int64(binary.BigEndian.Uint64(raw[:expiryHeader]))
	return deadline != 0 && c.now().UnixNano() >= deadline
}

// Get treats expired and malformed entries as misses.
func (c *BoltCache) Get(_ context.Context, key string) (string, error) {
	var value string
	err := c.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketName).Get([]byte(key))
		if len(raw) < expiryHeader || c.expired(raw) {
			return domain.ErrCacheMiss
		}
		value = string(raw[expiryHeader:])
		return nil
	})
	return value, err
}

func (c *BoltCache) Set(_ context.Context, key string, value string, expiration time.Duration) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), c.encode([]byte(value), expiration))
	})
}

func (c *BoltCache) Delete(_ context.Context, key string) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Delete([]byte(key))
	})
}

func (c *BoltCache) Ping(_ context.Context) error {
	return c.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketName) == nil {
			return fmt.Errorf("bucket %s missing", bucketName)
		}
		return nil
	})
}

func (c *BoltCache) Expire(_ context.Context, key string, expiration time.Duration) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		raw := b.Get([]byte(key))
		if len(raw) < expiryHeader || c.expired(raw) {
			return domain.ErrCacheMiss
		}
		return b.Put([]byte(key), c.encode(raw[expiryHeader:], expiration))
	})
}

// Purge removes every expired entry and returns how many were dropped.
func (c *BoltCache) Purge() (int, error) {
	removed := 0
	err := c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		var stale [][]byte
		err := b.ForEach(func(k, v []byte) error {
			if len(v) < expiryHeader || c.expired(v) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	return removed, err
}

func (c *BoltCache) Close() error {
	return c.db.Close()
}

var _ domain.Cache = (*BoltCache)(nil)
