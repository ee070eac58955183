package core

// error_messages.go turns technical errors into coded messages people can act on.
//
// Codes are grouped by area:
//
//	VAL  form and import validation
//	CUS  customer records
//	COL  customer columns
//	PRJ  project data store
//	EXP  snapshot exports
//	REQ  request lifecycle
//	RATE rate limiting
//	ERR000 anything unrecognised
//
// Users quote the code; the server log holds the technical error.

import (
	"context"
	"errors"
	"strings"
)

// UserMessage is what a person sees when something goes wrong.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Support reference
}

// String renders the message and action as one sentence pair.
func (m UserMessage) String() string {
	if m.Action == "" {
		return m.Message
	}
	return m.Message + ". " + m.Action
}

var messages = map[string]UserMessage{
	"VAL001":  {"Some fields are invalid", "Correct the highlighted fields and submit again", "VAL001"},
	"CUS001":  {"Customer not found", "Refresh the page, the customer may already be deleted", "CUS001"},
	"COL001":  {"A column with this name already exists", "Choose a different column name", "COL001"},
	"PRJ001":  {"Error talking to the project store", "Please try again later", "PRJ001"},
	"PRJ002":  {"Unable to connect to the project store", "Please try again in a few moments", "PRJ002"},
	"EXP001":  {"Too many exports in progress", "Please wait a moment and try again", "EXP001"},
	"EXP002":  {"Snapshot export is not configured", "Set EXPORT_S3_BUCKET or EXPORT_DIR and restart the server", "EXP002"},
	"REQ001":  {"Request was cancelled", "Please try again", "REQ001"},
	"REQ002":  {"Request timed out", "Please try again", "REQ002"},
	"RATE001": {"Too many requests", "Please wait a moment before trying again", "RATE001"},
	"ERR000":  {"An unexpected error occurred", "Please try again or contact support", "ERR000"},
}

// errorRule classifies an error by identity, then by text. Text matching
// covers errors that arrive as plain strings, such as driver failures.
type errorRule struct {
	target   error
	contains []string
	code     string
}

// Order matters: a project store failure caused by a refused connection is PRJ001.
var errorRules = []errorRule{
	{contains: []string{"validation failed"}, code: "VAL001"},
	{target: ErrRecordNotFound, contains: []string{"customer not found"}, code: "CUS001"},
	{target: ErrDuplicateColumn, contains: []string{"duplicate column key"}, code: "COL001"},
	{target: ErrProjectStore, contains: []string{"project store"}, code: "PRJ001"},
	{contains: []string{"connection refused", "connection reset"}, code: "PRJ002"},
	{target: ErrTooManyExports, contains: []string{"too many concurrent exports"}, code: "EXP001"},
	{target: ErrExportDisabled, contains: []string{"snapshot export is not configured"}, code: "EXP002"},
	{target: context.Canceled, contains: []string{"context canceled"}, code: "REQ001"},
	{target: context.DeadlineExceeded, contains: []string{"context deadline exceeded", "timeout"}, code: "REQ002"},
	{contains: []string{"rate limit"}, code: "RATE001"},
}

func (r errorRule) matches(err error, lowered string) bool {
	if r.target != nil && errors.Is(err, r.target) {
		return true
	}
	for _, s := range r.contains {
		if strings.Contains(lowered, s) {
			return true
		}
	}
	return false
}

// MapError returns the message for the first rule err matches, or ERR000.
// A nil error maps to the zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return messages["VAL001"]
	}

	lowered := strings.ToLower(err.Error())
	for _, r := range errorRules {
		if r.matches(err, lowered) {
			return messages[r.code]
		}
	}
	return messages["ERR000"]
}
