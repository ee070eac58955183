package core

// csv.go moves customers in and out of CSV.
//
// Export writes one header row of column labels in registry order, then one
// row per record using the same cell text the table shows. Import reads a
// header row, matches each header to a column by key or label, and adds every
// data row through the normal mutation path so validation and events apply.

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/erpdash/internal/logging"
)

// ErrExportDisabled is returned by ExportSnapshot when no destination is configured.
var ErrExportDisabled = errors.New("snapshot export is not configured")

// SnapshotWriter stores a finished snapshot and returns where it went.
type SnapshotWriter interface {
	WriteSnapshot(ctx context.Context, name string, body []byte) (location string, err error)
}

// SnapshotResult describes one completed export.
type SnapshotResult struct {
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Records   int       `json:"records"`
	Bytes     int       `json:"bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// WriteCustomersCSV encodes records under columns.
func WriteCustomersCSV(w io.Writer, columns []Column, records []Record) error {
	cw := csv.NewWriter(w)

	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = c.Label
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, len(columns))
	for _, r := range records {
		for i, c := range columns {
			row[i] = c.Display(r)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write customer %d: %w", r.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportCustomersCSV writes the customer view for q as CSV.
func (s *Service) ExportCustomersCSV(w io.Writer, q ViewQuery) error {
	v := s.CustomerView(q)
	return WriteCustomersCSV(w, v.Columns, v.Records)
}

// ExportSnapshot writes the full customer store to the snapshot destination.
// Concurrent exports are bounded by the export limiter.
func (s *Service) ExportSnapshot(ctx context.Context) (SnapshotResult, error) {
	if s.snapshots == nil {
		return SnapshotResult{}, ErrExportDisabled
	}
	if err := s.exports.Acquire(ctx); err != nil {
		return SnapshotResult{}, err
	}
	defer s.exports.Release()

	ctx, cancel := context.WithTimeout(ctx, ExportTimeout)
	defer cancel()

	start := s.now()
	snap := s.customers.Snapshot()

	var buf bytes.Buffer
	if err := WriteCustomersCSV(&buf, snap.Columns, snap.Records); err != nil {
		return SnapshotResult{}, fmt.Errorf("encode snapshot: %w", err)
	}

	name := "customers-" + start.UTC().Format("20060102T150405Z") + ".csv"
	location, err := s.snapshots.WriteSnapshot(ctx, name, buf.Bytes())
	if err != nil {
		return SnapshotResult{}, fmt.Errorf("write snapshot %s: %w", name, err)
	}

	res := SnapshotResult{
		Name:      name,
		Location:  location,
		Records:   len(snap.Records),
		Bytes:     buf.Len(),
		CreatedAt: start,
	}
	logging.FromContext(ctx).Info("customer snapshot exported",
		"location", location,
		"records", res.Records,
		"bytes", res.Bytes,
		"duration_ms", s.now().Sub(start).Milliseconds(),
	)
	return res, nil
}

// ImportRowError is one rejected data row.
type ImportRowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// ImportResult summarizes one CSV import.
type ImportResult struct {
	Added          int              `json:"added"`
	Failed         []ImportRowError `json:"failed,omitempty"`
	IgnoredHeaders []string         `json:"ignoredHeaders,omitempty"`
}

// MaxImportErrors stops an import once this many rows have failed.
const MaxImportErrors = 100

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ImportCustomersCSV adds one customer per data row of r. Rows that fail
// validation are reported and skipped; the rest are added in file order.
func (s *Service) ImportCustomersCSV(ctx context.Context, r io.Reader) (ImportResult, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return ImportResult{}, &ValidationError{Errors: []FieldError{{Field: "file", Message: "is empty"}}}
	}
	if err != nil {
		return ImportResult{}, fmt.Errorf("read header: %w", err)
	}

	var res ImportResult
	mapping, ignored := mapImportHeader(header, s.CustomerColumns())
	res.IgnoredHeaders = ignored
	if err := requireImportColumns(mapping); err != nil {
		return res, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if !errors.As(err, &pe) {
				return res, fmt.Errorf("read row: %w", err)
			}
			res.Failed = append(res.Failed, ImportRowError{Line: pe.Line, Message: pe.Err.Error()})
		} else {
			line, _ := cr.FieldPos(0)
			if rowErr := s.importRow(ctx, row, mapping); rowErr != nil {
				res.Failed = append(res.Failed, ImportRowError{Line: line, Message: rowErr.Error()})
			} else {
				res.Added++
			}
		}

		if len(res.Failed) >= MaxImportErrors {
			break
		}
	}

	requestLogger(ctx).Info("customer import finished", "added", res.Added, "failed", len(res.Failed))
	return res, nil
}

func (s *Service) importRow(ctx context.Context, row []string, mapping map[int]Column) error {
	nr, err := buildImportRecord(row, mapping)
	if err != nil {
		return err
	}
	_, err = s.AddCustomer(ctx, nr)
	return err
}

// mapImportHeader maps each header index to the column whose key or label
// matches it case-insensitively. Unmatched headers are returned as ignored.
func mapImportHeader(header []string, columns []Column) (map[int]Column, []string) {
	mapping := make(map[int]Column, len(header))
	var ignored []string
	for i, h := range header {
		h = strings.ToValidUTF8(strings.TrimSpace(h), "?")
		matched := false
		for _, c := range columns {
			if strings.EqualFold(h, c.Key) || strings.EqualFold(h, c.Label) {
				mapping[i] = c
				matched = true
				break
			}
		}
		if !matched && h != "" {
			ignored = append(ignored, h)
		}
	}
	return mapping, ignored
}

func requireImportColumns(mapping map[int]Column) error {
	seen := map[BuiltinField]bool{}
	for _, c := range mapping {
		if !c.IsCustom() {
			seen[c.Field] = true
		}
	}
	var ve ValidationError
	if !seen[FieldName] {
		ve.Add("header", "missing required column name")
	}
	if !seen[FieldEmail] {
		ve.Add("header", "missing required column email")
	}
	if ve.HasErrors() {
		return &ve
	}
	return nil
}

func buildImportRecord(row []string, mapping map[int]Column) (NewRecord, error) {
	var nr NewRecord
	for i, raw := range row {
		c, ok := mapping[i]
		if !ok {
			continue
		}
		v := strings.ToValidUTF8(raw, "?")
		if c.IsCustom() {
			if nr.CustomFields == nil {
				nr.CustomFields = make(map[string]string)
			}
			nr.CustomFields[c.Key] = v
			continue
		}
		switch c.Field {
		case FieldName:
			nr.Name = v
		case FieldEmail:
			nr.Email = v
		case FieldPhone:
			nr.Phone = v
		case FieldCategory:
			nr.Category = v
		case FieldOrders:
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				return NewRecord{}, fmt.Errorf("orders: invalid number %q", v)
			}
			nr.Orders = n
		}
	}
	return nr, nil
}

// SnapshotsEnabled reports whether a snapshot destination is configured.
func (s *Service) SnapshotsEnabled() bool {
	return s.snapshots != nil
}
