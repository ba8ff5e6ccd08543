package resolver

// DefaultSniffLimit is the maximum amount of bytes read from a file for content sniffing.
const DefaultSniffLimit = 4096

// minSniff is the least amount of bytes read, even if the magic database needs fewer, so the
// builtin detectors see enough content.
const minSniff = 512

// Detector determines a MIME type from the leading bytes of a file.
type Detector interface {
	Detect(data []byte) (mime string, ok bool)
}

// DetectorFunc is a function that implements Detector.
type DetectorFunc func(data []byte) (string, bool)

func (f DetectorFunc) Detect(data []byte) (string, bool) {
	return f(data)
}

// Method identifies the lookup operation reported to an Observer.
type Method string

const (
	MethodName    Method = "name"
	MethodContent Method = "content"
)

// Outcome is the result of a lookup as reported to an Observer.
type Outcome string

const (
	OutcomeMatch        Outcome = "match"
	OutcomeNoMatch      Outcome = "no_match"
	OutcomeInvalidInput Outcome = "invalid_input"
	OutcomeNotFound     Outcome = "not_found"
	OutcomeError        Outcome = "error"
)

// Observer is notified after every lookup, e.g. to record metrics.
// It must be safe for concurrent use.
type Observer interface {
	ObserveLookup(method Method, outcome Outcome)
}

type Option func(*Resolver)

// WithSniffLimit sets the maximum amount of bytes read for content sniffing.
// Values lower than 1 are ignored.
func WithSniffLimit(limit int) Option {
	return func(r *Resolver) {
		if limit > 0 {
			r.sniffLimit = limit
		}
	}
}

// WithFallback adds a detector that is consulted when the magic database and the builtin
// detectors find no match. Fallbacks are tried in the order they were added.
func WithFallback(d Detector) Option {
	return func(r *Resolver) {
		if d != nil {
			r.detectors = append(r.detectors, d)
		}
	}
}

// WithObserver sets the observer that is notified of every lookup.
func WithObserver(o Observer) Option {
	return func(r *Resolver) {
		r.observer = o
	}
}
