package builder

// Move returns a copy of list with the element at from removed and
// reinserted at to. Both indices must be within the list.
func Move[T any](list []T, from, to int) ([]T, error) {
	if from < 0 || from >= len(list) || to < 0 || to >= len(list) {
		return nil, ErrInvalidIndex
	}
	result := make([]T, 0, len(list))
	result = append(result, list[:from]...)
	result = append(result, list[from+1:]...)
	item := list[from]
	result = append(result[:to], append([]T{item}, result[to:]...)...)
	return result, nil
}
