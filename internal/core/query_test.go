package core

import (
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestParseViewQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  ViewQuery
	}{
		{"empty", "", ViewQuery{}},
		{"all values disable predicates", "category=all&orders=all", ViewQuery{}},
		{
			"full",
			"search=+ana+&category=Retail&orders=HIGH&filter[tier]=gold&filter[email]=&sort=orders&dir=desc",
			ViewQuery{
				Search:        "ana",
				Category:      "Retail",
				Volume:        VolumeHigh,
				ColumnFilters: map[string]string{"tier": "gold"},
				Sort:          SortConfig{Column: "orders", Direction: SortDesc},
			},
		},
		{"sort defaults to asc", "sort=name", ViewQuery{Sort: SortConfig{Column: "name", Direction: SortAsc}}},
		{"dir none clears sort", "sort=name&dir=none", ViewQuery{}},
		{"unknown volume", "orders=medium", ViewQuery{}},
		{"malformed filter", "filter[]=x&filter=y", ViewQuery{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, ParseViewQuery(v)); diff != "" {
				t.Errorf("ParseViewQuery(%q) mismatch (-want +got):\n%s", tt.query, diff)
			}
		})
	}
}

func TestViewQueryValues_RoundTrip(t *testing.T) {
	q := ViewQuery{
		Search:        "silva",
		Category:      "Wholesale",
		Volume:        VolumeLow,
		ColumnFilters: map[string]string{"tier": "gold", "phone": "555"},
		Sort:          SortConfig{Column: "tier", Direction: SortDesc},
	}
	got := ParseViewQuery(q.Values())
	if diff := cmp.Diff(q, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t,
		"category=Wholesale&dir=desc&filter%5Bphone%5D=555&filter%5Btier%5D=gold&orders=low&search=silva&sort=tier",
		q.Values().Encode())
}

func TestViewQueryWithSort(t *testing.T) {
	q := ViewQuery{ColumnFilters: map[string]string{"tier": "gold"}, Sort: SortConfig{Column: "name", Direction: SortAsc}}

	next := q.WithSort(q.Sort.Next("name"))
	assert.Equal(t, SortConfig{Column: "name", Direction: SortDesc}, next.Sort)

	cleared := next.WithSort(next.Sort.Next("name"))
	assert.False(t, cleared.Sort.Active())
	assert.Empty(t, cleared.Values().Get(ParamSort))

	next.ColumnFilters["tier"] = "changed"
	assert.Equal(t, "gold", q.ColumnFilters["tier"], "WithSort must not share filters")
}
