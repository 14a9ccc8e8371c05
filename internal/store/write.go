package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/containerd/errdefs"
	"github.com/google/uuid"
)

// Insert creates a row for entity from the whitelisted fields and returns
// the generated id.
func (c *Client) Insert(ctx context.Context, entity string, fields map[string]any) (string, error) {
	spec, ok := Entity(entity)
	if !ok {
		return "", fmt.Errorf("unknown entity %q: %w", entity, errdefs.ErrNotFound)
	}

	cols, vals, err := writableColumns(spec, fields)
	if err != nil {
		return "", err
	}
	if len(cols) == 0 {
		return "", fmt.Errorf("no writable fields for %s: %w", entity, errdefs.ErrInvalidArgument)
	}

	id := uuid.NewString()
	now := time.Now().UTC()
	cols = append(cols, spec.IDColumn, "created_at", "updated_at")
	vals = append(vals, id, now, now)

	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		spec.Table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	if _, err := c.pool.Exec(ctx, sql, vals...); err != nil {
		return "", classify("insert "+entity, err)
	}
	return id, nil
}

// Update patches the whitelisted fields of one row.
func (c *Client) Update(ctx context.Context, entity, id string, fields map[string]any) error {
	spec, ok := Entity(entity)
	if !ok {
		return fmt.Errorf("unknown entity %q: %w", entity, errdefs.ErrNotFound)
	}

	cols, vals, err := writableColumns(spec, fields)
	if err != nil {
		return err
	}
	if len(cols) == 0 {
		return fmt.Errorf("no writable fields for %s: %w", entity, errdefs.ErrInvalidArgument)
	}

	sets := make([]string, 0, len(cols)+1)
	for i, col := range cols {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i+1))
	}
	vals = append(vals, time.Now().UTC())
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(vals)))
	vals = append(vals, id)

	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d",
		spec.Table, strings.Join(sets, ", "), spec.IDColumn, len(vals))
	tag, err := c.pool.Exec(ctx, sql, vals...)
	if err != nil {
		return classify("update "+entity, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, errdefs.ErrNotFound)
	}
	return nil
}

// Delete removes one row.
func (c *Client) Delete(ctx context.Context, entity, id string) error {
	spec, ok := Entity(entity)
	if !ok {
		return fmt.Errorf("unknown entity %q: %w", entity, errdefs.ErrNotFound)
	}

	sql := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", spec.Table, spec.IDColumn)
	tag, err := c.pool.Exec(ctx, sql, id)
	if err != nil {
		return classify("delete "+entity, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, errdefs.ErrNotFound)
	}
	return nil
}

// writableColumns extracts whitelisted columns in sorted order, rejecting
// anything outside the entity's write whitelist.
func writableColumns(spec EntitySpec, fields map[string]any) ([]string, []any, error) {
	cols := make([]string, 0, len(fields))
	for col := range fields {
		if !spec.writable(col) {
			return nil, nil, fmt.Errorf("entity %s field %q is not writable: %w",
				spec.Name, col, errdefs.ErrInvalidArgument)
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)

	vals := make([]any, 0, len(cols))
	for _, col := range cols {
		vals = append(vals, fields[col])
	}
	return cols, vals, nil
}
