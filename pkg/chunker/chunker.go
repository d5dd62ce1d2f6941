package chunker

type Options struct {
	ChunkSize    int    // maximum chunk size in runes
	ChunkOverlap int    // tail of each chunk carried into the next
	Separator    string // preferred boundary when cutting a chunk short
}

type Chunk struct {
	Content string
	Index   int
	Start   int // rune offset
	End     int
}

func DefaultOptions() Options {
	return Options{
		ChunkSize:    1000,
		ChunkOverlap: 200,
		Separator:    "\n",
	}
}

// Split packs text into chunks of at most ChunkSize runes. Every chunk
// after the first starts exactly ChunkOverlap runes before the previous
// chunk's end, so context spanning a boundary survives in both chunks.
// When a chunk has to be cut mid-text, the cut prefers the last separator
// inside the window that still lies past the overlap region.
//
// Split is deterministic: the same text and options always produce the
// same sequence. Non-empty input yields at least one chunk.
func Split(text string, opts Options) []Chunk {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 1000
	}
	if opts.ChunkOverlap < 0 {
		opts.ChunkOverlap = 0
	}
	if opts.ChunkOverlap >= opts.ChunkSize {
		opts.ChunkOverlap = opts.ChunkSize - 1
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	sep := []rune(opts.Separator)

	var chunks []Chunk
	start := 0
	for idx := 0; ; idx++ {
		end := start + opts.ChunkSize
		if end >= len(runes) {
			chunks = append(chunks, Chunk{
				Content: string(runes[start:]),
				Index:   idx,
				Start:   start,
				End:     len(runes),
			})
			return chunks
		}

		if cut := lastSeparatorEnd(runes[start:end], sep); cut > opts.ChunkOverlap {
			end = start + cut
		}

		chunks = append(chunks, Chunk{
			Content: string(runes[start:end]),
			Index:   idx,
			Start:   start,
			End:     end,
		})
		start = end - opts.ChunkOverlap
	}
}

// lastSeparatorEnd returns the offset just past the last occurrence of sep
// in window, or 0 if sep is empty or absent.
func lastSeparatorEnd(window, sep []rune) int {
	if len(sep) == 0 || len(sep) > len(window) {
		return 0
	}
	for i := len(window) - len(sep); i >= 0; i-- {
		if runesEqual(window[i:i+len(sep)], sep) {
			return i + len(sep)
		}
	}
	return 0
}

func runesEqual(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
