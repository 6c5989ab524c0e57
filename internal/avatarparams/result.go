package avatarparams

// Status classifies the outcome of validating one parameter.
type Status uint8

const (
	// Omitted means the parameter was absent or empty.
	Omitted Status = iota
	// Rejected means a value was supplied but failed validation.
	Rejected
	// Accepted means Value carries a usable value.
	Accepted
)

func (s Status) String() string {
	switch s {
	case Omitted:
		return "omitted"
	case Rejected:
		return "rejected"
	case Accepted:
		return "accepted"
	default:
		return "unknown"
	}
}

// Result is the outcome of a validator. Value is only meaningful when
// Status is Accepted.
type Result[T any] struct {
	Status Status
	Value  T
}

func accept[T any](v T) Result[T] { return Result[T]{Status: Accepted, Value: v} }

func reject[T any]() Result[T] { return Result[T]{Status: Rejected} }

// Ok reports whether the result is Accepted.
func (r Result[T]) Ok() bool { return r.Status == Accepted }

// Get returns the value and whether it was accepted.
func (r Result[T]) Get() (T, bool) { return r.Value, r.Status == Accepted }
