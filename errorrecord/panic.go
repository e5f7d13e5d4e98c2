package errorrecord

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

const maxPanicFrames = 32

// panicException adapts a value recovered from a panic.
type panicException struct {
	value any
	stack string
	site  *TargetSite
}

// FromPanic adapts a recovered panic value. stack is the textual trace
// (usually debug.Stack()) and pcs the program counters captured in the
// deferred recover (usually via runtime.Callers); both may be empty. When the
// value is an error its chain becomes the inner exception.
func FromPanic(value any, stack []byte, pcs []uintptr) Exception {
	return &panicException{
		value: value,
		stack: string(stack),
		site:  siteFromPCs(pcs),
	}
}

// Recovered adapts a value returned by recover, capturing the current stack.
// It must be called directly from the deferred function that recovered so
// the panicking frame is found.
func Recovered(value any) Exception {
	pcs := make([]uintptr, maxPanicFrames)
	// skip runtime.Callers, Recovered and the deferred function
	n := runtime.Callers(3, pcs)
	return FromPanic(value, debug.Stack(), pcs[:n])
}

func (p *panicException) TypeName() string {
	if p.value == nil {
		return "panic"
	}
	return "panic(" + typeName(p.value) + ")"
}

func (p *panicException) Message() string {
	switch v := p.value.(type) {
	case nil:
		return "panic: nil"
	case error:
		return v.Error()
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func (p *panicException) StackTrace() string {
	return p.stack
}

func (p *panicException) TargetSite() *TargetSite {
	return p.site
}

func (p *panicException) InnerException() Exception {
	if err, ok := p.value.(error); ok {
		return FromError(err)
	}
	return nil
}

func (p *panicException) Data() []Datum {
	return nil
}

// siteFromPCs returns the first frame outside the Go runtime, which is where
// the panic was raised.
func siteFromPCs(pcs []uintptr) *TargetSite {
	if len(pcs) == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pcs)
	for {
		fr, more := frames.Next()
		if fr.Function != "" && !strings.HasPrefix(fr.Function, "runtime.") {
			return siteFromFunc(fr.Function)
		}
		if !more {
			return nil
		}
	}
}

// siteFromFunc splits a fully-qualified function name as reported by the
// runtime:
//
//	example.com/app/store.(*Repo).Save -> module example.com/app/store, type Repo, name Save
//	example.com/app/store.Open         -> module example.com/app/store, name Open
//	example.com/app/store.Open.func1   -> module example.com/app/store, name Open.func1
func siteFromFunc(fn string) *TargetSite {
	if fn == "" {
		return nil
	}

	// the package path ends at the first dot after the last slash
	pkgEnd := 0
	if slash := strings.LastIndex(fn, "/"); slash >= 0 {
		pkgEnd = slash
	}
	dot := strings.Index(fn[pkgEnd:], ".")
	if dot < 0 {
		return &TargetSite{Name: fn}
	}
	dot += pkgEnd

	site := &TargetSite{Module: fn[:dot]}
	rest := fn[dot+1:]

	if strings.HasPrefix(rest, "(") {
		if end := strings.Index(rest, ")."); end > 0 {
			site.DeclaringType = strings.TrimPrefix(rest[1:end], "*")
			site.Name = rest[end+2:]
			return site
		}
	}

	// value receivers are reported as pkg.Type.Method
	if idx := strings.Index(rest, "."); idx > 0 && !strings.HasPrefix(rest[idx+1:], "func") {
		site.DeclaringType = rest[:idx]
		site.Name = rest[idx+1:]
		return site
	}

	site.Name = rest
	return site
}
