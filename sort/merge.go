package sort

// mergeBins merges the sorted runs left and right into dst, len(dst) must be
// len(left)+len(right). On equal keys the left run wins, which keeps the sort stable.
func mergeBins[T any](left, right, dst []T, less func(a, b T) bool) {
	i, j := 0, 0
	for k := range dst {
		switch {
		case i >= len(left):
			dst[k] = right[j]
			j++
		case j >= len(right):
			dst[k] = left[i]
			i++
		case less(right[j], left[i]):
			dst[k] = right[j]
			j++
		default:
			dst[k] = left[i]
			i++
		}
	}
}
