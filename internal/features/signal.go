package features

// Signal wraps an enrichment value with its degradation state. Fetchers never
// fail the pipeline: when a lookup times out or errors they hand back the
// documented default wrapped in a degraded Signal so the reason stays
// inspectable downstream.
type Signal[T any] struct {
	Value    T
	Degraded bool
	Reason   string
}

func Ok[T any](v T) Signal[T] {
	return Signal[T]{Value: v}
}

func Degraded[T any](def T, reason string) Signal[T] {
	return Signal[T]{Value: def, Degraded: true, Reason: reason}
}
