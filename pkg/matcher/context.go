package matcher

import "bytes"

// ExtractContext returns up to lines lines of context around
// content[start:end]. before runs from the start of the line lines above
// the match up to start; after runs from end to the end of the line lines
// below the match, without its newline. before, the match and after are
// always contiguous in content. Invalid arguments yield empty context.
func ExtractContext(content []byte, start, end, lines int) (before, after string) {
	if lines <= 0 || start < 0 || start > end || end > len(content) {
		return "", ""
	}

	from := start
	for k := 0; ; k++ {
		nl := bytes.LastIndexByte(content[:from], '\n')
		if nl < 0 {
			from = 0
			break
		}
		if k == lines {
			from = nl + 1
			break
		}
		from = nl
	}

	to := end
	for k := 0; ; k++ {
		nl := bytes.IndexByte(content[to:], '\n')
		if nl < 0 {
			to = len(content)
			break
		}
		if k == lines {
			to += nl
			break
		}
		to += nl + 1
	}

	// string conversion copies, so snippets do not pin the blob.
	return string(content[from:start]), string(content[end:to])
}
