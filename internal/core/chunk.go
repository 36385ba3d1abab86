package core

// Chunk splits rows into consecutive groups of at most size elements. The
// last group may be shorter; empty input yields no groups. Groups share the
// backing array of rows.
func Chunk[T any](rows []T, size int) [][]T {
	if size <= 0 {
		panic("core.Chunk: size must be positive")
	}
	if len(rows) == 0 {
		return nil
	}

	chunks := make([][]T, 0, (len(rows)+size-1)/size)
	for start := 0; start < len(rows); start += size {
		end := min(start+size, len(rows))
		chunks = append(chunks, rows[start:end:end])
	}
	return chunks
}
