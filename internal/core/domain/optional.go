package domain

// Optional is a partial-update field value that distinguishes three states:
// not provided at all, provided as an explicit null, and provided with a value.
// The zero value means "not provided", so update structs can be built field by
// field without touching the rest.
type Optional[T any] struct {
	Set   bool // true when the field was provided
	Null  bool // true when the field was provided as an explicit null
	Value T    // meaningful only when Set && !Null
}

// NewOptional returns an Optional carrying the given value.
func NewOptional[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// NewNullOptional returns an Optional representing an explicit null, which
// instructs the store to clear the column rather than leave it untouched.
func NewNullOptional[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

// NewOptionalFromPtr maps a nil pointer to "not provided" and a non-nil
// pointer to its value. Useful when binding request bodies where absent and
// null are not distinguished.
func NewOptionalFromPtr[T any](p *T) Optional[T] {
	if p == nil {
		return Optional[T]{}
	}
	return NewOptional(*p)
}

// Ptr returns the value as a pointer suitable for a nullable column: nil when
// the optional is null, the value otherwise. Callers must check Set first.
func (o Optional[T]) Ptr() *T {
	if o.Null {
		return nil
	}
	v := o.Value
	return &v
}
