// pkg/analysis/errors.go
package analysis

import "fmt"

// UnknownFieldError reports a request to aggregate on a field absent from the
// canonical schema. It is raised at the aggregator's boundary, before any
// iteration starts.
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q: not part of the record set's schema", e.Field)
}

// EmptyGroupError reports an aggregation over a qualifying group that has no
// records with a usable value: the mean is undefined and must not be
// defaulted to zero.
type EmptyGroupError struct {
	Group string
	Field string
}

func (e *EmptyGroupError) Error() string {
	return fmt.Sprintf("group %q has no non-null values for field %q; mean is undefined", e.Group, e.Field)
}
