package utils

// SplitText cuts an article into overlapping chunks for embedding.
// Chunks are measured in runes; the overlap keeps sentences that span a
// boundary retrievable from both sides. Character-based on purpose:
// losing text at a bad cut is worse than an occasionally split word.
func SplitText(text string, chunkSize int, overlap int) []string {
	if chunkSize <= 0 || len(text) <= chunkSize {
		return []string{text}
	}

	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize
	}

	var chunks []string
	runes := []rune(text)
	total := len(runes)

	for i := 0; i < total; i += step {
		end := i + chunkSize
		if end > total {
			end = total
		}

		chunks = append(chunks, string(runes[i:end]))

		if end == total {
			break
		}
	}

	return chunks
}
