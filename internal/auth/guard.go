package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
)

type Resource int

const (
	ResourceProject Resource = iota
	ResourceStructure
	ResourcePipe
)

func (r Resource) String() string {
	switch r {
	case ResourceProject:
		return "project"
	case ResourceStructure:
		return "structure"
	case ResourcePipe:
		return "pipe"
	default:
		return "unknown"
	}
}

type Decision int

const (
	Allow Decision = iota
	NotFound
	// Forbidden means the resource exists but belongs to another user.
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case NotFound:
		return "not_found"
	case Forbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// OwnerLookup resolves the user that owns a resource through its project.
// Missing resources return pgx.ErrNoRows.
type OwnerLookup interface {
	GetProjectOwner(ctx context.Context, id int64) (int64, error)
	GetStructureOwner(ctx context.Context, id string) (int64, error)
	GetPipeOwner(ctx context.Context, id string) (int64, error)
}

type Guard struct {
	owners OwnerLookup
}

func NewGuard(owners OwnerLookup) *Guard {
	return &Guard{owners: owners}
}

// Decide reports whether userID may act on the resource. Only lookup failures
// other than "not found" are returned as errors.
func (g *Guard) Decide(ctx context.Context, res Resource, id string, userID int64) (Decision, error) {
	var (
		owner int64
		err   error
	)
	switch res {
	case ResourceProject:
		pid, perr := strconv.ParseInt(id, 10, 64)
		if perr != nil {
			return NotFound, nil
		}
		owner, err = g.owners.GetProjectOwner(ctx, pid)
	case ResourceStructure:
		owner, err = g.owners.GetStructureOwner(ctx, id)
	case ResourcePipe:
		owner, err = g.owners.GetPipeOwner(ctx, id)
	default:
		return NotFound, fmt.Errorf("unknown resource %d", res)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return NotFound, nil
	}
	if err != nil {
		return NotFound, fmt.Errorf("lookup %s owner: %w", res, err)
	}
	if owner != userID {
		return Forbidden, nil
	}
	return Allow, nil
}
