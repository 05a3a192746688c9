package matcher

import "bytes"

// Chunk is a line-aligned slice of a blob.
type Chunk struct {
	Content     []byte // the chunk content, sharing the blob's memory
	StartOffset int    // offset of Content[0] in the blob
	Index       int
}

// ChunkContent splits content into chunks of at most maxSize bytes that
// end just after a newline. A single line longer than maxSize becomes a
// chunk of its own. Content no larger than maxSize is one chunk.
func ChunkContent(content []byte, maxSize int) []Chunk {
	if len(content) <= maxSize || maxSize <= 0 {
		return []Chunk{{Content: content}}
	}

	var chunks []Chunk
	start := 0
	for start < len(content) {
		end := start + maxSize
		if end >= len(content) {
			end = len(content)
		} else if nl := bytes.LastIndexByte(content[start:end], '\n'); nl >= 0 {
			end = start + nl + 1
		} else if nl := bytes.IndexByte(content[end:], '\n'); nl >= 0 {
			end += nl + 1
		} else {
			end = len(content)
		}

		chunks = append(chunks, Chunk{
			Content:     content[start:end],
			StartOffset: start,
			Index:       len(chunks),
		})
		start = end
	}
	return chunks
}
