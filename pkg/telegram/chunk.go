package telegram

import "strings"

// maxMessageRunes is Telegram's per-message text limit.
const maxMessageRunes = 4096

// chunkMessage splits text into pieces of at most limit runes, preferring
// to break at newlines and falling back to spaces so words stay intact.
func chunkMessage(text string, limit int) []string {
	if limit <= 0 {
		return []string{text}
	}

	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	var chunks []string
	for len(runes) > 0 {
		if len(runes) <= limit {
			chunks = append(chunks, string(runes))
			break
		}

		cut := breakPoint(runes[:limit])
		chunks = append(chunks, strings.TrimRight(string(runes[:cut]), "\n "))
		runes = runes[cut:]
		// Drop the separator the break landed on.
		for len(runes) > 0 && (runes[0] == '\n' || runes[0] == ' ') {
			runes = runes[1:]
		}
	}
	return chunks
}

// breakPoint finds the index to cut a full window at, preferring the last
// newline, then the last space, then a hard cut.
func breakPoint(window []rune) int {
	for i := len(window) - 1; i > 0; i-- {
		if window[i] == '\n' {
			return i
		}
	}
	for i := len(window) - 1; i > 0; i-- {
		if window[i] == ' ' {
			return i
		}
	}
	return len(window)
}
