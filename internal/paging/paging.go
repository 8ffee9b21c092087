package paging

const (
	DefaultSize = 20
	MaxSize     = 100
)

// Size clamps a requested page size.
func Size(requested int32) int {
	switch {
	case requested <= 0:
		return DefaultSize
	case requested > MaxSize:
		return MaxSize
	default:
		return int(requested)
	}
}

// Page returns the items after the one named by token. The next token is the
// name of the last returned item, or empty when nothing follows. An unknown
// token restarts from the first item.
func Page[T any](items []T, name func(T) string, size int, token string) ([]T, string) {
	start := 0
	if token != "" {
		for i, item := range items {
			if name(item) == token {
				start = i + 1
				break
			}
		}
	}
	end := min(start+size, len(items))
	page := items[start:end]

	var next string
	if end < len(items) {
		next = name(items[end-1])
	}
	return page, next
}
