package state

// replaceByID returns a copy of list with the element sharing item's id replaced.
func replaceByID[T any](list []T, item T, id func(T) string) []T {
	out := make([]T, len(list))
	copy(out, list)
	for i := range out {
		if id(out[i]) == id(item) {
			out[i] = item
		}
	}
	return out
}

// removeByID returns a copy of list without the element carrying target.
func removeByID[T any](list []T, target string, id func(T) string) []T {
	out := make([]T, 0, len(list))
	for _, item := range list {
		if id(item) != target {
			out = append(out, item)
		}
	}
	return out
}
