package services

import "encoding/json"

// Field is an optional value in a partial update. Set reports that the key
// was present in the request; Null that it was an explicit null.
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// SetTo returns a Field holding v.
func SetTo[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

// SetNull returns a Field carrying an explicit null.
func SetNull[T any]() Field[T] {
	return Field[T]{Set: true, Null: true}
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if string(data) == "null" {
		f.Null = true
		var zero T
		f.Value = zero
		return nil
	}
	f.Null = false
	return json.Unmarshal(data, &f.Value)
}

// Ptr returns nil for an explicit null and a pointer to the value otherwise.
func (f Field[T]) Ptr() *T {
	if f.Null {
		return nil
	}
	v := f.Value
	return &v
}
