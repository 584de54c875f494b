package pipeline

import "strings"

// Reassembly window: candidate overlap lengths are tried from
// maxOverlapWindow down to just above minOverlapWindow in steps of
// overlapStep. The bounds are heuristic, kept for behavioral parity with
// the chunker's overlap seeding; tune with care.
const (
	maxOverlapWindow = 50
	minOverlapWindow = 10
	overlapStep      = 5
)

// CombineChunks joins per-chunk translations back into one document,
// deduplicating the literal overlap the chunker seeded between neighbours.
// For each chunk after the first it looks for the longest case-insensitive
// suffix of the accumulated result that prefixes the chunk, within the
// window above; finding one, it appends only the remainder, otherwise the
// whole chunk separated by a space.
func CombineChunks(parts []string) string {
	if len(parts) == 0 {
		return ""
	}

	result := []rune(parts[0])

	for _, part := range parts[1:] {
		chunk := []rune(part)

		window := maxOverlapWindow
		if len(result) < window {
			window = len(result)
		}
		if len(chunk) < window {
			window = len(chunk)
		}

		joined := false
		for size := window; size > minOverlapWindow; size -= overlapStep {
			if strings.EqualFold(string(result[len(result)-size:]), string(chunk[:size])) {
				result = append(result, chunk[size:]...)
				joined = true
				break
			}
		}
		if !joined {
			result = append(result, ' ')
			result = append(result, chunk...)
		}
	}

	return strings.TrimSpace(string(result))
}
