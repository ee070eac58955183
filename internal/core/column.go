package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ErrDuplicateColumn is returned when a derived column key is already registered.
var ErrDuplicateColumn = errors.New("duplicate column key")

// ColumnKind tags which variant a Column is.
type ColumnKind int

const (
	KindBuiltin ColumnKind = iota
	KindCustom
)

// BuiltinField identifies one of the fixed record fields.
type BuiltinField int

const (
	FieldName BuiltinField = iota
	FieldEmail
	FieldPhone
	FieldCategory
	FieldOrders
)

// Column describes one displayed attribute. A builtin column reads Field
// from the record; a custom column reads Key from Record.CustomFields.
type Column struct {
	Key   string
	Label string
	Kind  ColumnKind
	Field BuiltinField // meaningful only when Kind == KindBuiltin
}

// IsCustom reports whether the column reads a custom field.
func (c Column) IsCustom() bool {
	return c.Kind == KindCustom
}

// MarshalJSON emits the descriptor shape used by the API: key, label, isCustom.
func (c Column) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key      string `json:"key"`
		Label    string `json:"label"`
		IsCustom bool   `json:"isCustom"`
	}{c.Key, c.Label, c.IsCustom()})
}

// builtinColumns is the fixed prefix of every registry.
var builtinColumns = []Column{
	{Key: "name", Label: "Name", Kind: KindBuiltin, Field: FieldName},
	{Key: "email", Label: "Email", Kind: KindBuiltin, Field: FieldEmail},
	{Key: "phone", Label: "Phone", Kind: KindBuiltin, Field: FieldPhone},
	{Key: "category", Label: "Category", Kind: KindBuiltin, Field: FieldCategory},
	{Key: "orders", Label: "Orders", Kind: KindBuiltin, Field: FieldOrders},
}

// BuiltinColumns returns a copy of the five fixed columns.
func BuiltinColumns() []Column {
	out := make([]Column, len(builtinColumns))
	copy(out, builtinColumns)
	return out
}

// CustomColumn builds a custom column descriptor from a label.
func CustomColumn(label string) (Column, error) {
	label = strings.TrimSpace(label)
	key := DeriveColumnKey(label)
	if key == "" {
		return Column{}, &ValidationError{Errors: []FieldError{{Field: "label", Message: "is required"}}}
	}
	return Column{Key: key, Label: label, Kind: KindCustom}, nil
}

// DeriveColumnKey lowercases label and replaces each whitespace run with
// a single underscore: "Customer Tier" becomes "customer_tier".
func DeriveColumnKey(label string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(label), unicode.IsSpace), "_")
}

// findColumn looks a column up by key.
func findColumn(columns []Column, key string) (Column, bool) {
	for _, c := range columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}

// appendColumn returns a new registry with c appended, rejecting key collisions.
func appendColumn(columns []Column, c Column) ([]Column, error) {
	if _, exists := findColumn(columns, c.Key); exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Key)
	}
	out := make([]Column, len(columns), len(columns)+1)
	copy(out, columns)
	return append(out, c), nil
}

// cell is a record's value under one column.
type cell struct {
	text    string
	num     int
	numeric bool
	present bool
}

// cellOf extracts the value of column c from r.
func cellOf(c Column, r Record) cell {
	if c.IsCustom() {
		v, ok := r.Custom(c.Key)
		return cell{text: v, present: ok}
	}
	switch c.Field {
	case FieldName:
		return cell{text: r.Name, present: true}
	case FieldEmail:
		return cell{text: r.Email, present: true}
	case FieldPhone:
		return cell{text: r.Phone, present: true}
	case FieldCategory:
		return cell{text: r.Category, present: true}
	case FieldOrders:
		return cell{text: strconv.Itoa(r.Orders), num: r.Orders, numeric: true, present: true}
	}
	return cell{}
}

// Display returns the text shown for r under column c; empty when unset.
func (c Column) Display(r Record) string {
	return cellOf(c, r).text
}
