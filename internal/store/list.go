package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/containerd/errdefs"
	"github.com/jackc/pgx/v5"
)

// ListQuery carries the composed filter/sort/pagination parameters of one
// list query. Filters are equality predicates on whitelisted columns;
// DateFrom/DateTo bound the entity's date column; Search is matched with
// ILIKE across the entity's search columns.
type ListQuery struct {
	Filters   map[string]string
	DateFrom  *time.Time
	DateTo    *time.Time
	Search    string
	SortBy    string
	SortOrder string
	Offset    int
	Limit     int
}

// List runs the filtered/sorted/paginated query for entity and returns the
// page rows plus the total row count matching the predicates.
func (c *Client) List(ctx context.Context, entity string, q ListQuery) ([]map[string]any, int64, error) {
	spec, ok := Entity(entity)
	if !ok {
		return nil, 0, fmt.Errorf("unknown entity %q: %w", entity, errdefs.ErrNotFound)
	}

	where, args, err := buildPredicates(spec, q)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	countSQL := "SELECT count(*) FROM " + spec.Table + where
	if err := c.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, classify("count "+entity, err)
	}

	orderBy, err := buildOrderBy(spec, q)
	if err != nil {
		return nil, 0, err
	}

	pageSQL := fmt.Sprintf("SELECT * FROM %s%s%s LIMIT $%d OFFSET $%d",
		spec.Table, where, orderBy, len(args)+1, len(args)+2)
	pageArgs := append(args, q.Limit, q.Offset)

	rows, err := c.pool.Query(ctx, pageSQL, pageArgs...)
	if err != nil {
		return nil, 0, classify("list "+entity, err)
	}
	defer rows.Close()

	data, err := scanRows(rows)
	if err != nil {
		return nil, 0, classify("scan "+entity, err)
	}
	return data, total, nil
}

// buildPredicates renders the WHERE clause. Filter columns are iterated in
// sorted order so equal queries produce identical SQL and argument order.
func buildPredicates(spec EntitySpec, q ListQuery) (string, []any, error) {
	var clauses []string
	var args []any

	cols := make([]string, 0, len(q.Filters))
	for col := range q.Filters {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	for _, col := range cols {
		val := q.Filters[col]
		if val == "" {
			continue
		}
		if !spec.filterable(col) {
			return "", nil, fmt.Errorf("entity %s cannot be filtered by %q: %w",
				spec.Name, col, errdefs.ErrInvalidArgument)
		}
		args = append(args, val)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if q.DateFrom != nil && spec.DateColumn != "" {
		args = append(args, *q.DateFrom)
		clauses = append(clauses, fmt.Sprintf("%s >= $%d", spec.DateColumn, len(args)))
	}
	if q.DateTo != nil && spec.DateColumn != "" {
		args = append(args, *q.DateTo)
		clauses = append(clauses, fmt.Sprintf("%s <= $%d", spec.DateColumn, len(args)))
	}

	if q.Search != "" && len(spec.SearchColumns) > 0 {
		args = append(args, "%"+escapeLike(q.Search)+"%")
		n := len(args)
		matches := make([]string, 0, len(spec.SearchColumns))
		for _, col := range spec.SearchColumns {
			matches = append(matches, fmt.Sprintf("%s ILIKE $%d", col, n))
		}
		clauses = append(clauses, "("+strings.Join(matches, " OR ")+")")
	}

	if len(clauses) == 0 {
		return "", args, nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

func buildOrderBy(spec EntitySpec, q ListQuery) (string, error) {
	col := q.SortBy
	if col == "" {
		col = spec.DefaultSort
	}
	if !spec.sortable(col) && col != spec.DefaultSort {
		return "", fmt.Errorf("entity %s cannot be sorted by %q: %w",
			spec.Name, col, errdefs.ErrInvalidArgument)
	}

	order := "ASC"
	if strings.EqualFold(q.SortOrder, "desc") {
		order = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, %s", col, order, spec.IDColumn), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// scanRows materializes a result set as one map per row, keyed by column
// name. Listing is schema-agnostic on purpose: entity tables evolve without
// touching this layer.
func scanRows(rows pgx.Rows) ([]map[string]any, error) {
	fields := rows.FieldDescriptions()
	data := make([]map[string]any, 0, 16)

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make(map[string]any, len(fields))
		for i, fd := range fields {
			row[string(fd.Name)] = values[i]
		}
		data = append(data, row)
	}
	return data, rows.Err()
}
