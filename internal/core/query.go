package core

import (
	"maps"
	"net/url"
	"slices"
	"strings"
)

// Query parameter names for customer views.
const (
	ParamSearch   = "search"
	ParamCategory = "category"
	ParamOrders   = "orders"
	ParamSort     = "sort"
	ParamDir      = "dir"
)

// FilterParam returns the query parameter carrying the filter for key.
func FilterParam(key string) string {
	return "filter[" + key + "]"
}

// ParseViewQuery reads a ViewQuery from URL query values. Unknown parameters
// are ignored and blank filters are dropped.
func ParseViewQuery(v url.Values) ViewQuery {
	q := ViewQuery{
		Search:   strings.TrimSpace(v.Get(ParamSearch)),
		Category: strings.TrimSpace(v.Get(ParamCategory)),
		Volume:   ParseOrderVolume(v.Get(ParamOrders)),
	}
	if strings.EqualFold(q.Category, AllValues) {
		q.Category = ""
	}
	if q.Volume == VolumeAll {
		q.Volume = ""
	}

	for name, values := range v {
		if !strings.HasPrefix(name, "filter[") || !strings.HasSuffix(name, "]") {
			continue
		}
		key := name[len("filter[") : len(name)-1]
		if key == "" || len(values) == 0 || strings.TrimSpace(values[0]) == "" {
			continue
		}
		if q.ColumnFilters == nil {
			q.ColumnFilters = make(map[string]string)
		}
		q.ColumnFilters[key] = strings.TrimSpace(values[0])
	}

	if col := strings.TrimSpace(v.Get(ParamSort)); col != "" {
		dir := SortAsc
		if v.Has(ParamDir) {
			dir = ParseSortDirection(v.Get(ParamDir))
		}
		if dir != SortNone {
			q.Sort = SortConfig{Column: col, Direction: dir}
		}
	}
	return q
}

// Values encodes q as URL query values. ParseViewQuery(q.Values()) equals q
// for any q produced by ParseViewQuery.
func (q ViewQuery) Values() url.Values {
	v := url.Values{}
	if q.Search != "" {
		v.Set(ParamSearch, q.Search)
	}
	if q.Category != "" && !strings.EqualFold(q.Category, AllValues) {
		v.Set(ParamCategory, q.Category)
	}
	if q.Volume != "" && q.Volume != VolumeAll {
		v.Set(ParamOrders, string(q.Volume))
	}
	for _, key := range slices.Sorted(maps.Keys(q.ColumnFilters)) {
		if val := q.ColumnFilters[key]; val != "" {
			v.Set(FilterParam(key), val)
		}
	}
	if q.Sort.Active() {
		v.Set(ParamSort, q.Sort.Column)
		v.Set(ParamDir, string(q.Sort.Direction))
	}
	return v
}

// WithSort returns a copy of q with its sort replaced.
func (q ViewQuery) WithSort(s SortConfig) ViewQuery {
	q.ColumnFilters = maps.Clone(q.ColumnFilters)
	if s.Direction == SortNone {
		s = SortConfig{}
	}
	q.Sort = s
	return q
}
