package response

// Result is the envelope returned by every read and write. On failure Data is the
// zero value and Count is nil.
type Result[T any] struct {
	Data  T      `json:"data"`
	Error error  `json:"error"`
	Count *int64 `json:"count,omitempty"` // Total matching rows, set for paginated selects
}

// OK reports whether the operation succeeded
func (r Result[T]) OK() bool {
	return r.Error == nil
}

type DeleteResult struct {
	Success bool  `json:"success"`
	Error   error `json:"error"`
}

func Success[T any](data T) Result[T] {
	return Result[T]{Data: data}
}

func Failure[T any](err error) Result[T] {
	return Result[T]{Error: err}
}
