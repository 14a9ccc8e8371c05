package store

import "slices"

// EntitySpec whitelists how one entity may be listed and written: its table,
// the columns filters/sorts may reference, the text columns free-text search
// scans, and the columns writers may set. Everything outside the whitelist
// is rejected before any SQL is built.
type EntitySpec struct {
	Name          string
	Table         string
	IDColumn      string
	FilterColumns []string
	SortColumns   []string
	SearchColumns []string
	DateColumn    string
	WriteColumns  []string
	DefaultSort   string
}

func (e EntitySpec) filterable(col string) bool {
	return slices.Contains(e.FilterColumns, col)
}

func (e EntitySpec) sortable(col string) bool {
	return slices.Contains(e.SortColumns, col)
}

func (e EntitySpec) writable(col string) bool {
	return slices.Contains(e.WriteColumns, col)
}

var entities = map[string]EntitySpec{
	"rentals": {
		Name:          "rentals",
		Table:         "rentals",
		IDColumn:      "id",
		FilterColumns: []string{"status", "vehicle_id", "customer_id"},
		SortColumns:   []string{"created_at", "start_time", "end_time", "total_price", "status"},
		SearchColumns: []string{"customer_name", "customer_email", "notes"},
		DateColumn:    "start_time",
		WriteColumns: []string{
			"vehicle_id", "customer_id", "customer_name", "customer_email",
			"status", "start_time", "end_time", "total_price", "deposit_amount", "notes",
		},
		DefaultSort: "created_at",
	},
	"vehicles": {
		Name:          "vehicles",
		Table:         "vehicles",
		IDColumn:      "id",
		FilterColumns: []string{"status", "category"},
		SortColumns:   []string{"created_at", "name", "category", "status"},
		SearchColumns: []string{"name", "plate_number"},
		DateColumn:    "created_at",
		WriteColumns:  []string{"name", "plate_number", "category", "status", "notes"},
		DefaultSort:   "name",
	},
	"bookings": {
		Name:          "bookings",
		Table:         "bookings",
		IDColumn:      "id",
		FilterColumns: []string{"status", "vehicle_id", "customer_id"},
		SortColumns:   []string{"created_at", "scheduled_at", "status"},
		SearchColumns: []string{"customer_name", "customer_email"},
		DateColumn:    "scheduled_at",
		WriteColumns: []string{
			"vehicle_id", "customer_id", "customer_name", "customer_email",
			"status", "scheduled_at", "duration_hours", "notes",
		},
		DefaultSort: "scheduled_at",
	},
	"users": {
		Name:          "users",
		Table:         "users",
		IDColumn:      "id",
		FilterColumns: []string{"role", "active"},
		SortColumns:   []string{"created_at", "full_name", "role"},
		SearchColumns: []string{"full_name", "email"},
		DateColumn:    "created_at",
		WriteColumns:  []string{"full_name", "email", "phone", "role", "active"},
		DefaultSort:   "full_name",
	},
}

// Entity returns the spec for a known entity name.
func Entity(name string) (EntitySpec, bool) {
	spec, ok := entities[name]
	return spec, ok
}

// EntityNames lists the known entity names.
func EntityNames() []string {
	names := make([]string, 0, len(entities))
	for name := range entities {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
