package utils

// Map transforms each element of src. The result is never nil, so that an empty list is
// rendered as [] in JSON.
func Map[T, U any](src []T, f func(T) U) []U {
	out := make([]U, len(src))
	for i, v := range src {
		out[i] = f(v)
	}
	return out
}

// Filter keeps the elements of src for which keep is true, in order
func Filter[T any](src []T, keep func(T) bool) []T {
	out := make([]T, 0, len(src))
	for _, v := range src {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
