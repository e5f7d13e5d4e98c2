package errorrecord

// Exception is the capability set Build needs from a failure. Adapters exist
// for Go errors (FromError) and recovered panics (FromPanic); callers with
// their own failure types can implement it directly.
type Exception interface {
	// TypeName is the runtime type name of the failure.
	TypeName() string
	Message() string
	// StackTrace returns "" when no trace is available.
	StackTrace() string
	// TargetSite returns nil when the origin is unknown.
	TargetSite() *TargetSite
	// InnerException returns nil at the end of the cause chain.
	InnerException() Exception
	// Data returns side data in its natural order. Values may be nil.
	Data() []Datum
}

// TargetSite identifies where a failure originated. DeclaringType is empty
// for free functions.
type TargetSite struct {
	Module        string
	DeclaringType string
	Name          string
}

// Datum is one entry of the side data attached to a failure.
type Datum struct {
	Key   any
	Value any
}
