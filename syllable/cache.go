package syllable

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	lediscfg "github.com/ledisdb/ledisdb/config"
	"github.com/ledisdb/ledisdb/ledis"
	"go.uber.org/zap"
)

const keyPrefix = "syllables:"

// ErrInvalidTTL is returned for a TTL ledis cannot express: negative, or
// positive but under one second. Zero means entries never expire.
var ErrInvalidTTL = errors.New("syllable cache ttl must be 0 or at least 1s")

// ValidateTTL reports whether ttl can be stored as a ledis expiry.
func ValidateTTL(ttl time.Duration) error {
	if ttl < 0 || (ttl > 0 && ttl < time.Second) {
		return fmt.Errorf("%w: got %s", ErrInvalidTTL, ttl)
	}
	return nil
}

// CachedCounter memoises successful lookups of another Counter in an embedded
// ledis database. Errors are passed through and never stored.
type CachedCounter struct {
	next   Counter
	ledis  *ledis.Ledis
	db     *ledis.DB
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedCounter opens (or creates) a ledis store under dir. A ttl of 0
// keeps entries forever.
func NewCachedCounter(next Counter, dir string, ttl time.Duration, logger *zap.Logger) (*CachedCounter, error) {
	if err := ValidateTTL(ttl); err != nil {
		return nil, err
	}
	cfg := lediscfg.NewConfigDefault()
	cfg.DataDir = dir

	l, err := ledis.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open syllable cache %s: %w", dir, err)
	}
	db, err := l.Select(0)
	if err != nil {
		l.Close()
		return nil, fmt.Errorf("failed to select syllable cache db: %w", err)
	}
	return &CachedCounter{
		next:   next,
		ledis:  l,
		db:     db,
		ttl:    ttl,
		logger: logger.Named("syllable-cache"),
	}, nil
}

func cacheKey(text string) []byte {
	sum := sha1.Sum([]byte(strings.ToLower(strings.TrimSpace(text))))
	return []byte(keyPrefix + hex.EncodeToString(sum[:]))
}

// Count returns the memoised count for text, asking the next Counter on a miss.
func (c *CachedCounter) Count(ctx context.Context, text string) (int, error) {
	key := cacheKey(text)

	if v, err := c.db.Get(key); err != nil {
		c.logger.Warn("Cache read failed", zap.Error(err))
	} else if v != nil {
		if n, err := strconv.Atoi(string(v)); err == nil {
			return n, nil
		}
	}

	n, err := c.next.Count(ctx, text)
	if err != nil {
		return n, err
	}

	value := []byte(strconv.Itoa(n))
	if c.ttl > 0 {
		err = c.db.SetEX(key, int64(c.ttl/time.Second), value)
	} else {
		err = c.db.Set(key, value)
	}
	if err != nil {
		c.logger.Warn("Cache write failed", zap.Error(err))
	}
	return n, nil
}

// Close releases the ledis store.
func (c *CachedCounter) Close() {
	c.ledis.Close()
}
