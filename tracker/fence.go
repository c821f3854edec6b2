package tracker

import "strings"

// BlockLanguage is the fenced code block info string that marks tracker text
// inside a note.
const BlockLanguage = "tracker"

// ExtractBlocks returns the bodies of ```tracker (or ~~~tracker) fenced
// blocks in document order. An unclosed fence runs to the end of the
// document.
func ExtractBlocks(markdown string) []string {
	markdown = strings.ReplaceAll(markdown, "\r\n", "\n")
	lines := strings.Split(markdown, "\n")

	var blocks []string
	var body []string
	var fence string
	inBlock, capture := false, false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !inBlock {
			marker, info, ok := openingFence(trimmed)
			if !ok {
				continue
			}
			inBlock = true
			fence = marker
			capture = isTrackerInfo(info)
			body = body[:0]
			continue
		}
		if isClosingFence(trimmed, fence) {
			if capture {
				blocks = append(blocks, strings.Join(body, "\n"))
			}
			inBlock, capture = false, false
			continue
		}
		if capture {
			body = append(body, line)
		}
	}
	if inBlock && capture {
		blocks = append(blocks, strings.Join(body, "\n"))
	}
	return blocks
}

func openingFence(line string) (marker, info string, ok bool) {
	for _, ch := range []byte{'`', '~'} {
		n := 0
		for n < len(line) && line[n] == ch {
			n++
		}
		if n >= 3 {
			return line[:n], strings.TrimSpace(line[n:]), true
		}
	}
	return "", "", false
}

func isClosingFence(line, fence string) bool {
	if !strings.HasPrefix(line, fence) {
		return false
	}
	return strings.Trim(line, fence[:1]) == ""
}

func isTrackerInfo(info string) bool {
	fields := strings.Fields(info)
	return len(fields) > 0 && strings.EqualFold(fields[0], BlockLanguage)
}
