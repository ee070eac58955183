package core

import (
	"maps"
	"net/mail"
	"slices"
	"strings"
)

// Record is one customer row. Records are values: the store replaces them,
// it never edits one in place.
type Record struct {
	ID           int64             `json:"id" toml:"-"`
	Name         string            `json:"name" toml:"name"`
	Email        string            `json:"email" toml:"email"`
	Phone        string            `json:"phone" toml:"phone"`
	Category     string            `json:"category" toml:"category"`
	Orders       int               `json:"orders" toml:"orders"`
	CustomFields map[string]string `json:"customFields,omitempty" toml:"custom_fields"`
}

// Custom returns the value of a custom field and whether it is set.
func (r Record) Custom(key string) (string, bool) {
	if r.CustomFields == nil {
		return "", false
	}
	v, ok := r.CustomFields[key]
	return v, ok
}

// clone returns a copy that shares no mutable state with r.
func (r Record) clone() Record {
	if r.CustomFields != nil {
		r.CustomFields = maps.Clone(r.CustomFields)
	}
	return r
}

// NewRecord is the input to Store.AddRecord. IDs are always assigned by the store.
type NewRecord struct {
	Name         string            `json:"name"`
	Email        string            `json:"email"`
	Phone        string            `json:"phone"`
	Category     string            `json:"category"`
	Orders       int               `json:"orders"`
	CustomFields map[string]string `json:"customFields,omitempty"`
}

// normalize trims whitespace from every field and drops empty custom values.
func (n NewRecord) normalize() NewRecord {
	out := NewRecord{
		Name:     strings.TrimSpace(n.Name),
		Email:    strings.TrimSpace(n.Email),
		Phone:    strings.TrimSpace(n.Phone),
		Category: strings.TrimSpace(n.Category),
		Orders:   n.Orders,
	}
	for k, v := range n.CustomFields {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if out.CustomFields == nil {
			out.CustomFields = make(map[string]string, len(n.CustomFields))
		}
		out.CustomFields[k] = v
	}
	return out
}

// validate checks required fields and custom keys against the registry.
// It expects a normalized record.
func (n NewRecord) validate(columns []Column) error {
	var ve ValidationError

	if n.Name == "" {
		ve.Add("name", "is required")
	}
	if n.Email == "" {
		ve.Add("email", "is required")
	} else if _, err := mail.ParseAddress(n.Email); err != nil {
		ve.Add("email", "is not a valid address")
	}
	if n.Orders < 0 {
		ve.Add("orders", "must not be negative")
	}

	for _, key := range slices.Sorted(maps.Keys(n.CustomFields)) {
		col, ok := findColumn(columns, key)
		if !ok || !col.IsCustom() {
			ve.Add(key, "unknown custom column")
		}
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}
