package errorrecord

import (
	"fmt"
	"reflect"
	"strings"
)

const (
	// MaxDepth bounds the number of records produced for one cause chain.
	MaxDepth = 100
	// MessageSeparator replaces line breaks in recorded messages.
	MessageSeparator = "   "
)

// lineBreak is the sequence NormalizeMessage replaces. A lone "\n" or "\r"
// is kept as is.
const lineBreak = "\r\n"

// ErrorRecord is the flattened, serialisable form of a failure. The JSON
// field names are part of the wire contract with API clients and log sinks.
type ErrorRecord struct {
	ExceptionType     string       `json:"exceptionType"`
	Message           string       `json:"message"`
	StackTrace        *string      `json:"stackTrace"`
	ModuleName        *string      `json:"moduleName"`
	DeclaringTypeName *string      `json:"declaringTypeName"`
	TargetSiteName    *string      `json:"targetSiteName"`
	Data              []DataEntry  `json:"data"`
	InnerError        *ErrorRecord `json:"innerError"`
}

// DataEntry is one side-data pair copied from the failure.
type DataEntry struct {
	Key   string  `json:"key"`
	Value *string `json:"value"`
}

// Depth returns the number of records in the chain starting at r.
func (r *ErrorRecord) Depth() int {
	n := 0
	for cur := r; cur != nil; cur = cur.InnerError {
		n++
	}
	return n
}

// NormalizeMessage replaces every "\r\n" with MessageSeparator so the
// message stays on one line in tabular and log storage. No other character
// changes.
func NormalizeMessage(msg string) string {
	return strings.ReplaceAll(msg, lineBreak, MessageSeparator)
}

// Build flattens ex and its causes into an ErrorRecord chain. It returns nil
// for a nil exception. Chains longer than MaxDepth are truncated.
func Build(ex Exception) *ErrorRecord {
	if isNil(ex) {
		return nil
	}

	var root, tail *ErrorRecord
	for depth := 0; ex != nil && depth < MaxDepth; depth++ {
		rec := buildOne(ex)
		if root == nil {
			root = rec
		} else {
			tail.InnerError = rec
		}
		tail = rec
		ex = innerOf(ex)
	}

	return root
}

// InnermostMessage returns the normalised message of the deepest exception
// in the cause chain of ex.
func InnermostMessage(ex Exception) string {
	if isNil(ex) {
		return ""
	}

	for depth := 1; depth < MaxDepth; depth++ {
		inner := innerOf(ex)
		if inner == nil {
			break
		}
		ex = inner
	}

	msg, _ := safeString(ex.Message)
	return NormalizeMessage(msg)
}

func buildOne(ex Exception) *ErrorRecord {
	rec := &ErrorRecord{Data: []DataEntry{}}

	rec.ExceptionType, _ = safeString(ex.TypeName)
	msg, _ := safeString(ex.Message)
	rec.Message = NormalizeMessage(msg)

	if st, ok := safeString(ex.StackTrace); ok && st != "" {
		rec.StackTrace = &st
	}

	if ts := targetSiteOf(ex); ts != nil {
		rec.ModuleName = strPtr(ts.Module)
		if ts.DeclaringType != "" {
			rec.DeclaringTypeName = strPtr(ts.DeclaringType)
		}
		rec.TargetSiteName = strPtr(ts.Name)
	}

	for _, d := range dataOf(ex) {
		if isNilValue(d.Value) {
			continue
		}
		key, _ := safeString(func() string { return fmt.Sprint(d.Key) })
		val, ok := safeString(func() string { return fmt.Sprint(d.Value) })
		if !ok {
			continue
		}
		rec.Data = append(rec.Data, DataEntry{Key: key, Value: &val})
	}

	return rec
}

func safeString(fn func() string) (s string, ok bool) {
	defer func() {
		if recover() != nil {
			s, ok = "", false
		}
	}()
	return fn(), true
}

func targetSiteOf(ex Exception) (ts *TargetSite) {
	defer func() {
		if recover() != nil {
			ts = nil
		}
	}()
	return ex.TargetSite()
}

func dataOf(ex Exception) (data []Datum) {
	defer func() {
		if recover() != nil {
			data = nil
		}
	}()
	return ex.Data()
}

func innerOf(ex Exception) (inner Exception) {
	defer func() {
		if recover() != nil {
			inner = nil
		}
	}()
	inner = ex.InnerException()
	if isNil(inner) {
		return nil
	}
	return inner
}

func isNil(ex Exception) bool {
	return ex == nil || isNilValue(ex)
}

// isNilValue reports whether v is nil or a typed nil such as (*T)(nil).
func isNilValue(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

func strPtr(s string) *string {
	return &s
}
