package publish

// Split returns the first limit items and the remainder, preserving order.
// A non-positive limit leaves the head empty.
func Split[T any](items []T, limit int) (head, tail []T) {
	if limit <= 0 {
		return nil, items
	}
	if len(items) <= limit {
		return items, nil
	}
	return items[:limit], items[limit:]
}
