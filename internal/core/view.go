package core

// view.go derives the displayed customer list from a store snapshot.
//
// The derivation is a pure function of (records, columns, query). It runs on
// every request from scratch; there is no incremental index. Stages run in a
// fixed order:
//  1. free-text search over name, email and phone
//  2. category equality
//  3. order volume (high > 5, low <= 5)
//  4. per-column filters
//  5. sort
//
// Missing custom values never match a non-empty column filter and sort after
// every present value regardless of direction.

import (
	"cmp"
	"slices"
	"strings"
)

// HighVolumeThreshold separates high-volume from low-volume customers.
const HighVolumeThreshold = 5

// AllValues disables the category and order-volume predicates.
const AllValues = "all"

// SortDirection is the direction of the active sort.
type SortDirection string

const (
	SortNone SortDirection = "none"
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ParseSortDirection maps a query value to a direction, defaulting to none.
func ParseSortDirection(s string) SortDirection {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending":
		return SortAsc
	case "desc", "descending":
		return SortDesc
	default:
		return SortNone
	}
}

// SortConfig is the single active sort. Only one column sorts at a time.
type SortConfig struct {
	Column    string        `json:"column,omitempty"`
	Direction SortDirection `json:"direction"`
}

// Active reports whether the config reorders anything.
func (s SortConfig) Active() bool {
	return s.Column != "" && (s.Direction == SortAsc || s.Direction == SortDesc)
}

// Next returns the config after activating column key. Repeated activation of
// the same column cycles asc, desc, none; a different column starts at asc.
func (s SortConfig) Next(key string) SortConfig {
	if s.Column != key {
		return SortConfig{Column: key, Direction: SortAsc}
	}
	switch s.Direction {
	case SortAsc:
		return SortConfig{Column: key, Direction: SortDesc}
	case SortDesc:
		return SortConfig{Column: key, Direction: SortNone}
	default:
		return SortConfig{Column: key, Direction: SortAsc}
	}
}

// OrderVolume filters by order count.
type OrderVolume string

const (
	VolumeAll  OrderVolume = AllValues
	VolumeHigh OrderVolume = "high"
	VolumeLow  OrderVolume = "low"
)

// ParseOrderVolume maps a query value to a volume, defaulting to all.
func ParseOrderVolume(s string) OrderVolume {
	switch OrderVolume(strings.ToLower(strings.TrimSpace(s))) {
	case VolumeHigh:
		return VolumeHigh
	case VolumeLow:
		return VolumeLow
	default:
		return VolumeAll
	}
}

func (v OrderVolume) matches(orders int) bool {
	switch v {
	case VolumeHigh:
		return orders > HighVolumeThreshold
	case VolumeLow:
		return orders <= HighVolumeThreshold
	default:
		return true
	}
}

// ViewQuery is the full set of view inputs.
type ViewQuery struct {
	Search        string            `json:"search,omitempty"`
	Category      string            `json:"category,omitempty"` // "" or "all" disables
	Volume        OrderVolume       `json:"volume,omitempty"`   // "" or "all" disables
	ColumnFilters map[string]string `json:"columnFilters,omitempty"`
	Sort          SortConfig        `json:"sort"`
}

// View is a derived, display-ready customer table.
type View struct {
	Columns    []Column  `json:"columns"`
	Records    []Record  `json:"records"`
	Total      int       `json:"total"` // records in the store before filtering
	Categories []string  `json:"categories"`
	Query      ViewQuery `json:"query"`
}

// Derive applies q to records and returns a new slice. records is not modified.
func Derive(records []Record, columns []Column, q ViewQuery) []Record {
	search := strings.ToLower(q.Search)
	filters := activeFilters(columns, q.ColumnFilters)

	out := make([]Record, 0, len(records))
	for _, r := range records {
		if !matchesSearch(r, search) {
			continue
		}
		if q.Category != "" && q.Category != AllValues && r.Category != q.Category {
			continue
		}
		if !q.Volume.matches(r.Orders) {
			continue
		}
		if !matchesFilters(r, filters) {
			continue
		}
		out = append(out, r)
	}

	if q.Sort.Active() {
		if col, ok := findColumn(columns, q.Sort.Column); ok {
			sortRecords(out, col, q.Sort.Direction)
		}
	}
	return out
}

// matchesSearch reports whether lowered search occurs in name, email or phone.
func matchesSearch(r Record, search string) bool {
	if search == "" {
		return true
	}
	return containsFold(r.Name, search) ||
		containsFold(r.Email, search) ||
		containsFold(r.Phone, search)
}

func containsFold(s, lowered string) bool {
	return strings.Contains(strings.ToLower(s), lowered)
}

type columnFilter struct {
	col   Column
	value string // lowered, except for exact-match columns
	exact bool
}

// activeFilters resolves non-empty filters against the registry.
// Keys that name no registered column are ignored.
func activeFilters(columns []Column, raw map[string]string) []columnFilter {
	var out []columnFilter
	for _, col := range columns {
		v, ok := raw[col.Key]
		if !ok || v == "" {
			continue
		}
		exact := !col.IsCustom() && col.Field == FieldCategory
		if !exact {
			v = strings.ToLower(v)
		}
		out = append(out, columnFilter{col: col, value: v, exact: exact})
	}
	return out
}

func matchesFilters(r Record, filters []columnFilter) bool {
	for _, f := range filters {
		c := cellOf(f.col, r)
		if !c.present {
			return false
		}
		if f.exact {
			if c.text != f.value {
				return false
			}
			continue
		}
		if !containsFold(c.text, f.value) {
			return false
		}
	}
	return true
}

// sortRecords stable-sorts rs by col. Absent values go last in both directions.
func sortRecords(rs []Record, col Column, dir SortDirection) {
	slices.SortStableFunc(rs, func(a, b Record) int {
		ca, cb := cellOf(col, a), cellOf(col, b)
		switch {
		case !ca.present && !cb.present:
			return 0
		case !ca.present:
			return 1
		case !cb.present:
			return -1
		}
		c := compareCells(ca, cb)
		if dir == SortDesc {
			return -c
		}
		return c
	})
}

func compareCells(a, b cell) int {
	if a.numeric && b.numeric {
		return cmp.Compare(a.num, b.num)
	}
	return strings.Compare(strings.ToLower(a.text), strings.ToLower(b.text))
}

// Categories returns the distinct non-empty categories in store order.
func Categories(records []Record) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range records {
		if r.Category == "" || seen[r.Category] {
			continue
		}
		seen[r.Category] = true
		out = append(out, r.Category)
	}
	return out
}
