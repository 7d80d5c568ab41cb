package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/u16-io/FindPangram/model"
	"go.uber.org/zap"
)

// ErrUnsupportedURL is returned by Open for a connection string whose scheme
// names no known backend.
var ErrUnsupportedURL = errors.New("unsupported database url")

// Store persists pangrams. Records are only ever inserted and listed.
type Store interface {
	Create(ctx context.Context, p *model.Pangram) error
	// List returns every record, newest first.
	List(ctx context.Context) ([]model.Pangram, error)
	Ping(ctx context.Context) error
	Close() error
}

// Open picks a backend from the scheme of url:
//
//	mongodb://..., mongodb+srv://...  MongoDB, database named by mongoDatabase
//	sqlite://path, sqlite:path         gorm on sqlite3
func Open(ctx context.Context, url, mongoDatabase string, logger *zap.Logger) (Store, error) {
	var (
		s   Store
		err error
	)
	switch {
	case strings.HasPrefix(url, "mongodb://"), strings.HasPrefix(url, "mongodb+srv://"):
		s, err = OpenMongo(ctx, url, mongoDatabase, logger)
	case strings.HasPrefix(url, "sqlite://"):
		s, err = OpenSQLite(strings.TrimPrefix(url, "sqlite://"), logger)
	case strings.HasPrefix(url, "sqlite:"):
		s, err = OpenSQLite(strings.TrimPrefix(url, "sqlite:"), logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedURL, redact(url))
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// redact drops credentials so a bad url can be logged.
func redact(url string) string {
	scheme, rest, ok := strings.Cut(url, "://")
	if !ok {
		return url
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		rest = "***@" + rest[at+1:]
	}
	return scheme + "://" + rest
}
