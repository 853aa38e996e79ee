package card

import "errors"

var (
	// ErrLoad matches failures to decode the input image.
	ErrLoad = errors.New("could not load image")
	// ErrNotACard matches inputs whose text does not look like a trainer card.
	ErrNotACard = errors.New("no valid trainer card found")
	// ErrIncomplete matches cards whose name or play time could not be read.
	ErrIncomplete = errors.New("could not extract critical fields")
)

// FailureKind classifies why recognition did not produce a card.
type FailureKind int

const (
	LoadFailure FailureKind = iota + 1
	NotACardFailure
	IncompleteExtractionFailure
)

func (k FailureKind) String() string {
	switch k {
	case LoadFailure:
		return "load"
	case NotACardFailure:
		return "not_a_card"
	case IncompleteExtractionFailure:
		return "incomplete"
	}
	return "unknown"
}

func (k FailureKind) sentinel() error {
	switch k {
	case LoadFailure:
		return ErrLoad
	case NotACardFailure:
		return ErrNotACard
	case IncompleteExtractionFailure:
		return ErrIncomplete
	}
	return nil
}

// Failure is the typed outcome of a recognition that produced no card.
// errors.Is matches it against the sentinel of its kind and against Err.
type Failure struct {
	Kind   FailureKind
	Reason string
	Err    error
}

func (f *Failure) Error() string {
	msg := "recognition failed"
	if s := f.Kind.sentinel(); s != nil {
		msg = s.Error()
	}
	if f.Reason != "" {
		msg += ": " + f.Reason
	}
	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return msg
}

func (f *Failure) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := f.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if f.Err != nil {
		errs = append(errs, f.Err)
	}
	return errs
}

// KindOf returns the FailureKind carried by err, or 0 when err is not a Failure.
func KindOf(err error) FailureKind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return 0
}
