package async

import (
	"strings"
	"sync"
)

type Errors struct {
	E []error
}

var _ error = (*Errors)(nil)

func (e Errors) Wrapped() error {
	if len(e.E) == 0 {
		return nil
	}
	return e
}

func (e Errors) Error() string {
	var sb strings.Builder
	l := len(e.E)
	for i, err := range e.E {
		sb.WriteString(err.Error())
		if i < l-1 {
			sb.WriteString(", ")
		}
	}
	return sb.String()
}

// Result is the settled outcome of one task run by Settle.
type Result[T any] struct {
	Value T
	Err   error
}

// Settle runs f for every element of src concurrently and waits for all of
// them. Unlike an errgroup, one failure neither cancels nor hides the others;
// results are returned in the order of src.
func Settle[S any, T any](src []S, f func(S) (T, error)) []Result[T] {
	results := make([]Result[T], len(src))

	var wg sync.WaitGroup
	wg.Add(len(src))
	for i, el := range src {
		go func(i int, el S) {
			defer wg.Done()
			v, err := f(el)
			results[i] = Result[T]{Value: v, Err: err}
		}(i, el)
	}
	wg.Wait()

	return results
}

// Errs collects the errors of settled results, nil when every task succeeded.
func Errs[T any](results []Result[T]) error {
	errs := Errors{}
	for _, r := range results {
		if r.Err != nil {
			errs.E = append(errs.E, r.Err)
		}
	}
	return errs.Wrapped()
}
