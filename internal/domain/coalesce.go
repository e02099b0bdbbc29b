package domain

// BoolFromPtrWithDefault returns the first non-nil *bool value, or the fallback.
func BoolFromPtrWithDefault(fallback bool, ptrs ...*bool) bool {
	for _, p := range ptrs {
		if p != nil {
			return *p
		}
	}
	return fallback
}
