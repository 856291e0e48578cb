package service

import (
	"fmt"
	"unicode"
)

// Chunker splits transcript text into overlapping fixed-size passages.
// Splitting is deterministic: the same text and configuration always yield
// the same chunk sequence, which keeps re-indexing reproducible.
type Chunker struct {
	size    int // maximum chunk length, in runes
	overlap int // runes shared between neighboring chunks
}

// NewChunker creates a chunker. overlap must stay below size.
func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap (%d) must be non-negative and smaller than chunk size (%d)", overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Chunk splits text into passages of at most the configured size, preferring
// paragraph, then sentence, then word boundaries before a hard cut.
// Consecutive chunks overlap, and together they cover the whole input.
func (c *Chunker) Chunk(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	var chunks []string
	start := 0
	for {
		if len(runes)-start <= c.size {
			chunks = append(chunks, string(runes[start:]))
			return chunks
		}

		end := c.findBreak(runes, start, start+c.size)
		chunks = append(chunks, string(runes[start:end]))

		next := end - c.overlap
		if next <= start {
			next = start + 1 // always advance
		}
		start = next
	}
}

// findBreak picks the split point for a chunk spanning runes[start:limit].
// It scans backwards for the best natural boundary, but never cuts the chunk
// below half the budget; with no usable boundary it hard-cuts at limit.
func (c *Chunker) findBreak(runes []rune, start, limit int) int {
	floor := start + c.size/2

	// Paragraph break: split after a blank line.
	for i := limit - 1; i > floor; i-- {
		if runes[i] == '\n' && runes[i-1] == '\n' {
			return i + 1
		}
	}

	// Line break.
	for i := limit - 1; i > floor; i-- {
		if runes[i] == '\n' {
			return i + 1
		}
	}

	// Sentence end followed by whitespace.
	for i := limit - 1; i > floor; i-- {
		if isSentenceEnd(runes[i-1]) && unicode.IsSpace(runes[i]) {
			return i + 1
		}
	}

	// Word boundary.
	for i := limit - 1; i > floor; i-- {
		if unicode.IsSpace(runes[i]) {
			return i + 1
		}
	}

	return limit
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?':
		return true
	}
	return false
}
