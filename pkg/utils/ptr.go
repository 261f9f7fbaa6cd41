package utils

func SafeDeref[T any](ptr *T) T {
	if ptr == nil {
		var zero T
		return zero
	}
	return *ptr
}

// NonEmptyPtr returns nil for "" so optional text columns stay NULL.
func NonEmptyPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
