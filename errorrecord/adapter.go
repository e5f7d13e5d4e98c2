package errorrecord

import (
	stderrs "errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	smerrors "github.com/Station-Manager/errors"
)

// Optional capabilities an error may implement to enrich its record.
type (
	stackTracer interface {
		StackTrace() string
	}
	targetSiter interface {
		TargetSite() *TargetSite
	}
	dataCarrier interface {
		Data() []Datum
	}
	contextCarrier interface {
		Context() map[string]any
	}
	multiUnwrapper interface {
		Unwrap() []error
	}
)

// errorException adapts a Go error to Exception.
type errorException struct {
	err error
}

// FromError adapts err to the Exception interface. It returns nil for a nil
// error.
//
// The cause chain follows DetailedError.Cause first, then errors.Unwrap, then
// the first branch of a joined error. The remaining branches of a joined error
// are reported as side data.
func FromError(err error) Exception {
	if err == nil {
		return nil
	}
	return &errorException{err: err}
}

// BuildError is shorthand for Build(FromError(err)).
func BuildError(err error) *ErrorRecord {
	return Build(FromError(err))
}

// InnermostErrorMessage is shorthand for InnermostMessage(FromError(err)).
func InnermostErrorMessage(err error) string {
	return InnermostMessage(FromError(err))
}

func (e *errorException) TypeName() string {
	return typeName(e.err)
}

func (e *errorException) Message() string {
	return e.err.Error()
}

func (e *errorException) StackTrace() string {
	if st, ok := e.err.(stackTracer); ok {
		return st.StackTrace()
	}
	return ""
}

func (e *errorException) TargetSite() *TargetSite {
	if ts, ok := e.err.(targetSiter); ok {
		return ts.TargetSite()
	}
	if dErr, ok := smerrors.AsDetailedError(e.err); ok && dErr != nil && dErr == e.err {
		return siteFromOp(string(dErr.Op()))
	}
	return nil
}

func (e *errorException) InnerException() Exception {
	if dErr, ok := smerrors.AsDetailedError(e.err); ok && dErr != nil && dErr == e.err {
		return FromError(dErr.Cause())
	}
	if inner := stderrs.Unwrap(e.err); inner != nil {
		return FromError(inner)
	}
	if mu, ok := e.err.(multiUnwrapper); ok {
		for _, inner := range mu.Unwrap() {
			if inner != nil {
				return FromError(inner)
			}
		}
	}
	return nil
}

func (e *errorException) Data() []Datum {
	var data []Datum

	switch v := e.err.(type) {
	case dataCarrier:
		data = append(data, v.Data()...)
	case contextCarrier:
		ctx := v.Context()
		keys := make([]string, 0, len(ctx))
		for k := range ctx {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			data = append(data, Datum{Key: k, Value: ctx[k]})
		}
	}

	if mu, ok := e.err.(multiUnwrapper); ok {
		skipped := false
		for i, branch := range mu.Unwrap() {
			if branch == nil {
				continue
			}
			if !skipped {
				// the first branch is the inner exception
				skipped = true
				continue
			}
			data = append(data, Datum{Key: fmt.Sprintf("joined[%d]", i), Value: branch.Error()})
		}
	}

	return data
}

// typeName returns the dereferenced type name of v, falling back to %T for
// unnamed types.
func typeName(v any) string {
	t := reflect.TypeOf(v)
	if t == nil {
		return "<nil>"
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if name := t.Name(); name != "" {
		return name
	}
	return fmt.Sprintf("%T", v)
}

// siteFromOp splits an operation identifier such as "database.validateConfig"
// into module and member.
func siteFromOp(op string) *TargetSite {
	if op == "" {
		return nil
	}
	idx := strings.LastIndex(op, ".")
	if idx < 0 {
		return &TargetSite{Name: op}
	}
	return &TargetSite{Module: op[:idx], Name: op[idx+1:]}
}
