package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/containerd/errdefs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// classify maps driver errors onto the errdefs taxonomy so callers can
// branch on the class without importing pgx:
//   - no rows            -> ErrNotFound
//   - constraint errors  -> ErrInvalidArgument
//   - other server errors-> ErrInternal
//   - anything else (network, timeout, canceled) -> ErrUnavailable
func classify(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("%s: %w", op, errdefs.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 23 = integrity constraint violation.
		if strings.HasPrefix(pgErr.Code, "23") {
			return fmt.Errorf("%s: %w", op, errors.Join(errdefs.ErrInvalidArgument, err))
		}
		return fmt.Errorf("%s: %w", op, errors.Join(errdefs.ErrInternal, err))
	}

	// Network failures, timeouts, canceled contexts: the store is
	// unreachable as far as the caller is concerned.
	return fmt.Errorf("%s: %w", op, errors.Join(errdefs.ErrUnavailable, err))
}
