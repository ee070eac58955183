package core

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	StatusBacklog    ProjectStatus = "backlog"
	StatusInProgress ProjectStatus = "in_progress"
	StatusPaused     ProjectStatus = "paused"
	StatusCanceled   ProjectStatus = "canceled"
	StatusCompleted  ProjectStatus = "completed"
)

// ProjectPriority ranks a project.
type ProjectPriority string

const (
	PriorityLow    ProjectPriority = "low"
	PriorityMedium ProjectPriority = "medium"
	PriorityHigh   ProjectPriority = "high"
)

// Project is one row of the project board.
type Project struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Status      ProjectStatus   `json:"status"`
	Priority    ProjectPriority `json:"priority"`
	Completion  int             `json:"completion"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
	Owner       string          `json:"owner"`
}

// ColumnType controls how a project cell is rendered.
type ColumnType string

const (
	ColumnText     ColumnType = "text"
	ColumnSelect   ColumnType = "select"
	ColumnDate     ColumnType = "date"
	ColumnNumber   ColumnType = "number"
	ColumnProgress ColumnType = "progress"
)

// ColumnTypes lists every supported type in menu order.
var ColumnTypes = []ColumnType{ColumnText, ColumnSelect, ColumnDate, ColumnNumber, ColumnProgress}

// Valid reports whether t is a supported column type.
func (t ColumnType) Valid() bool {
	for _, ct := range ColumnTypes {
		if ct == t {
			return true
		}
	}
	return false
}

// ProjectColumn is a column definition stored in the project data store.
type ProjectColumn struct {
	ID      uuid.UUID  `json:"id"`
	Name    string     `json:"name"`
	Type    ColumnType `json:"type"`
	Options []string   `json:"options,omitempty"`
}

// NewProjectColumn is the input to ProjectStore.InsertColumn.
type NewProjectColumn struct {
	Name    string     `json:"name"`
	Type    ColumnType `json:"type"`
	Options []string   `json:"options,omitempty"`
}

// Normalize trims the name, defaults the type to text and drops blank options.
func (n NewProjectColumn) Normalize() NewProjectColumn {
	out := NewProjectColumn{
		Name: strings.TrimSpace(n.Name),
		Type: ColumnType(strings.ToLower(strings.TrimSpace(string(n.Type)))),
	}
	if out.Type == "" {
		out.Type = ColumnText
	}
	for _, o := range n.Options {
		if o = strings.TrimSpace(o); o != "" {
			out.Options = append(out.Options, o)
		}
	}
	return out
}

// Validate checks a normalized column definition.
func (n NewProjectColumn) Validate() error {
	var ve ValidationError
	if n.Name == "" {
		ve.Add("name", "is required")
	}
	if !n.Type.Valid() {
		ve.Add("type", "invalid column type "+strconv.Quote(string(n.Type)))
	}
	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// ErrProjectStore wraps every failure reported by a ProjectStore so the web
// layer can show one generic notification.
var ErrProjectStore = errors.New("project store")

// ProjectStore is the external data store behind the project board.
type ProjectStore interface {
	ListProjects(ctx context.Context) ([]Project, error)
	ListColumns(ctx context.Context) ([]ProjectColumn, error)
	InsertColumn(ctx context.Context, col NewProjectColumn) (ProjectColumn, error)
}

// Attribute returns the project value addressed by a column name.
// Names are matched case-insensitively against the project's JSON field names.
func (p Project) Attribute(name string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "id":
		return p.ID.String(), true
	case "name":
		return p.Name, true
	case "description":
		return p.Description, true
	case "category":
		return p.Category, true
	case "status":
		return string(p.Status), true
	case "priority":
		return string(p.Priority), true
	case "completion":
		return strconv.Itoa(p.Completion), true
	case "due_date":
		if p.DueDate == nil {
			return "", true
		}
		return p.DueDate.Format(time.DateOnly), true
	case "owner":
		return p.Owner, true
	}
	return "", false
}

// Tone is a badge palette entry.
type Tone string

const (
	ToneGray   Tone = "gray"
	ToneBlue   Tone = "blue"
	TonePurple Tone = "purple"
	ToneRed    Tone = "red"
	ToneGreen  Tone = "green"
	ToneYellow Tone = "yellow"
)

var statusTones = map[ProjectStatus]Tone{
	StatusBacklog:    ToneGray,
	StatusInProgress: ToneBlue,
	StatusPaused:     TonePurple,
	StatusCanceled:   ToneRed,
	StatusCompleted:  ToneGreen,
}

var priorityTones = map[ProjectPriority]Tone{
	PriorityLow:    ToneGreen,
	PriorityMedium: ToneYellow,
	PriorityHigh:   ToneRed,
}

// ProjectCell is a render-ready project cell.
type ProjectCell struct {
	Type    ColumnType
	Text    string
	Percent int  // progress cells
	Tone    Tone // select cells
}

// DueDateLayout is the display layout for date cells.
const DueDateLayout = "Jan 2, 2006"

// RenderProjectCell resolves col against p and formats the value by column type.
func RenderProjectCell(p Project, col ProjectColumn) ProjectCell {
	raw, _ := p.Attribute(col.Name)
	cell := ProjectCell{Type: col.Type, Text: raw}

	switch col.Type {
	case ColumnProgress:
		n, err := strconv.Atoi(raw)
		if err != nil {
			n = 0
		}
		cell.Percent = min(max(n, 0), 100)
		cell.Text = strconv.Itoa(cell.Percent) + "%"

	case ColumnDate:
		cell.Text = "-"
		if raw != "" {
			if t, err := time.Parse(time.DateOnly, raw); err == nil {
				cell.Text = t.Format(DueDateLayout)
			}
		}

	case ColumnSelect:
		cell.Tone = ToneGray
		switch strings.ToLower(col.Name) {
		case "status":
			if t, ok := statusTones[ProjectStatus(raw)]; ok {
				cell.Tone = t
			}
		case "priority":
			if t, ok := priorityTones[ProjectPriority(raw)]; ok {
				cell.Tone = t
			}
		}
	}
	return cell
}

// SearchProjects keeps projects whose name, description, category or owner
// contains query, case-insensitively. An empty query keeps everything.
func SearchProjects(projects []Project, query string) []Project {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return projects
	}
	var out []Project
	for _, p := range projects {
		if containsFold(p.Name, q) || containsFold(p.Description, q) ||
			containsFold(p.Category, q) || containsFold(p.Owner, q) {
			out = append(out, p)
		}
	}
	return out
}
