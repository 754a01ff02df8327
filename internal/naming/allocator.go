package naming

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"inspectpozo/core-go/internal/metrics"
)

const defaultMaxAttempts = 5

// ErrAllocationExhausted is returned when every attempt collided with an
// identifier written by another process.
var ErrAllocationExhausted = errors.New("identifier allocation exhausted")

// IDLister reads the identifiers currently stored under a prefix.
//
// NOTE: structures and pipes live in different tables; the HTTP layer routes
// the pipe prefix to the pipe listing and every other prefix to structures.
type IDLister interface {
	ListIDsWithPrefix(ctx context.Context, prefix string) ([]string, error)
}

// IDListerFunc adapts a function to IDLister.
type IDListerFunc func(ctx context.Context, prefix string) ([]string, error)

func (f IDListerFunc) ListIDsWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	return f(ctx, prefix)
}

// Allocator hands out sequential identifiers. Allocations for the same prefix
// are serialized in-process, and inserts rejected by the store's uniqueness
// constraint (a concurrent writer in another process) are retried with a
// fresh scan.
type Allocator struct {
	log         zerolog.Logger
	ids         IDLister
	metrics     *metrics.Metrics
	width       int
	maxAttempts int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewAllocator(log zerolog.Logger, ids IDLister, m *metrics.Metrics) *Allocator {
	return &Allocator{
		log:         log,
		ids:         ids,
		metrics:     m,
		width:       Width,
		maxAttempts: defaultMaxAttempts,
		locks:       make(map[string]*sync.Mutex),
	}
}

// Peek returns the identifier the next allocation would try, without
// reserving it.
func (a *Allocator) Peek(ctx context.Context, prefix string) (string, error) {
	existing, err := a.ids.ListIDsWithPrefix(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("list ids for %q: %w", prefix, err)
	}
	return NextID(existing, prefix, a.width), nil
}

// Allocate computes the next identifier for prefix and passes it to insert.
// insert must persist the record in one statement; when it fails with a
// unique violation the scan is repeated.
func (a *Allocator) Allocate(ctx context.Context, prefix string, insert func(ctx context.Context, id string) error) (string, error) {
	lock := a.prefixLock(prefix)
	lock.Lock()
	defer lock.Unlock()

	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		id, err := a.Peek(ctx, prefix)
		if err != nil {
			return "", err
		}

		err = insert(ctx, id)
		if err == nil {
			a.metrics.IncIDAllocated(prefix)
			return id, nil
		}
		if !IsUniqueViolation(err) {
			return "", err
		}

		a.metrics.IncIDConflict(prefix)
		a.log.Warn().Str("prefix", prefix).Str("id", id).Int("attempt", attempt).Msg("identifier taken by concurrent writer; rescanning")
	}

	return "", fmt.Errorf("%w: prefix %q after %d attempts", ErrAllocationExhausted, prefix, a.maxAttempts)
}

func (a *Allocator) prefixLock(prefix string) *sync.Mutex {
	key := strings.ToLower(prefix)

	a.mu.Lock()
	defer a.mu.Unlock()

	l, ok := a.locks[key]
	if !ok {
		l = &sync.Mutex{}
		a.locks[key] = l
	}
	return l
}

// IsUniqueViolation reports whether err is a Postgres unique_violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
