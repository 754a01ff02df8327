package naming

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inspectpozo/core-go/internal/metrics"
)

// memIDs behaves like a table with a primary key on id.
type memIDs struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func newMemIDs(seed ...string) *memIDs {
	m := &memIDs{ids: make(map[string]struct{})}
	for _, id := range seed {
		m.ids[id] = struct{}{}
	}
	return m
}

func (m *memIDs) ListIDsWithPrefix(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for id := range m.ids {
		if strings.HasPrefix(strings.ToLower(id), strings.ToLower(prefix)) {
			out = append(out, id)
		}
	}
	return out, nil
}

func (m *memIDs) insert(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ids[id]; ok {
		return &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
	}
	m.ids[id] = struct{}{}
	return nil
}

func newTestAllocator(ids IDLister) *Allocator {
	return NewAllocator(zerolog.New(io.Discard), ids, metrics.New())
}

func TestAllocator_Peek(t *testing.T) {
	a := newTestAllocator(newMemIDs("pz0001", "pz0003", "sm0002"))

	id, err := a.Peek(context.Background(), PrefixWell)
	require.NoError(t, err)
	assert.Equal(t, "pz0004", id)
}

func TestAllocator_ConcurrentAllocationsAreUnique(t *testing.T) {
	store := newMemIDs()
	a := newTestAllocator(store)

	const n = 50
	var wg sync.WaitGroup
	results := make(chan string, n)
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := a.Allocate(context.Background(), PrefixPipe, store.insert)
			if err != nil {
				errs <- err
				return
			}
			results <- id
		}()
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		t.Fatalf("unexpected allocation error: %v", err)
	}
	seen := make(map[string]struct{}, n)
	for id := range results {
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, n)
	assert.Contains(t, seen, "tub0050")
}

func TestAllocator_RetriesOnUniqueViolation(t *testing.T) {
	store := newMemIDs("pz0001")
	a := newTestAllocator(store)

	// Simulate another process writing pz0002 between our scan and insert.
	raced := false
	insert := func(ctx context.Context, id string) error {
		if !raced {
			raced = true
			require.NoError(t, store.insert(ctx, id))
		}
		return store.insert(ctx, id)
	}

	id, err := a.Allocate(context.Background(), PrefixWell, insert)
	require.NoError(t, err)
	assert.Equal(t, "pz0003", id)
}

func TestAllocator_ExhaustsAfterMaxAttempts(t *testing.T) {
	a := newTestAllocator(newMemIDs())
	calls := 0
	insert := func(context.Context, string) error {
		calls++
		return &pgconn.PgError{Code: "23505"}
	}

	_, err := a.Allocate(context.Background(), PrefixDrain, insert)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllocationExhausted)
	assert.Equal(t, defaultMaxAttempts, calls)
}

func TestAllocator_OtherInsertErrorsAreNotRetried(t *testing.T) {
	a := newTestAllocator(newMemIDs())
	boom := errors.New("connection reset")
	calls := 0

	_, err := a.Allocate(context.Background(), PrefixOther, func(context.Context, string) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestAllocator_ListErrorPropagates(t *testing.T) {
	boom := errors.New("db down")
	a := newTestAllocator(IDListerFunc(func(context.Context, string) ([]string, error) {
		return nil, boom
	}))

	_, err := a.Allocate(context.Background(), PrefixWell, func(context.Context, string) error {
		t.Fatal("insert must not run when the scan fails")
		return nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("x")))
}
