package logging

import (
	"fmt"
	"log/slog"
	"time"
)

// Attribute keys shared by every pagewright log line.
const (
	FieldComponent = "component"
	FieldContentID = "content_id"
	FieldPage      = "page"
	FieldStage     = "stage"
	FieldRunID     = "run_id"
	FieldSessionID = "session_id"
	// FieldTableKind names the key table (stbl, ttbl, ptbl, ctbl).
	FieldTableKind = "table_kind"
	// FieldScheme names the tiling scheme applied to a page.
	FieldScheme = "scheme"
	// FieldDirective carries the raw or formatted tile directive.
	FieldDirective = "directive"
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step to the operator.
	FieldErrorHint = "error_hint"
	// FieldImpact states what the warning costs the output.
	FieldImpact = "impact"
)

// identityFields are written right after the message on console lines, in
// this order, so a page's lines read the same way regardless of which
// component emitted them.
var identityFields = []string{FieldContentID, FieldPage, FieldScheme, FieldTableKind, FieldDirective}

type Attr = slog.Attr

func String(key, value string) Attr { return slog.String(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

// Error records err under "error"; a nil error is written as "<nil>".
func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// Event tags the line with an event type for filtering.
func Event(name string) Attr { return slog.String(FieldEventType, name) }

func ContentID(id string) Attr { return slog.String(FieldContentID, id) }

func TableKind(kind string) Attr { return slog.String(FieldTableKind, kind) }

// Scheme records a tiling scheme by name.
func Scheme(kind fmt.Stringer) Attr { return slog.String(FieldScheme, kind.String()) }

func Directive(d string) Attr { return slog.String(FieldDirective, d) }

func Hint(text string) Attr { return slog.String(FieldErrorHint, text) }

func Impact(text string) Attr { return slog.String(FieldImpact, text) }
