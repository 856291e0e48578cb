package service

import (
	"strings"
	"testing"
	"unicode"
)

func TestNewChunkerValidation(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		wantErr bool
	}{
		{name: "valid", size: 1000, overlap: 200, wantErr: false},
		{name: "zero overlap", size: 100, overlap: 0, wantErr: false},
		{name: "overlap equals size", size: 100, overlap: 100, wantErr: true},
		{name: "overlap exceeds size", size: 100, overlap: 150, wantErr: true},
		{name: "negative overlap", size: 100, overlap: -1, wantErr: true},
		{name: "zero size", size: 0, overlap: 0, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewChunker(tt.size, tt.overlap)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewChunker(%d, %d) error = %v, wantErr %v", tt.size, tt.overlap, err, tt.wantErr)
			}
		})
	}
}

func TestChunkShortText(t *testing.T) {
	c, err := NewChunker(1000, 200)
	if err != nil {
		t.Fatal(err)
	}

	text := "The sky is blue. Grass is green."
	chunks := c.Chunk(text)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != text {
		t.Errorf("chunk = %q, want %q", chunks[0], text)
	}

	if got := c.Chunk(""); got != nil {
		t.Errorf("empty input should yield no chunks, got %v", got)
	}
}

func TestChunkDeterminism(t *testing.T) {
	c, err := NewChunker(80, 20)
	if err != nil {
		t.Fatal(err)
	}

	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 40)
	first := c.Chunk(text)
	second := c.Chunk(text)

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

// TestChunkCoverage verifies chunks tile the input with overlap and no gaps.
func TestChunkCoverage(t *testing.T) {
	texts := map[string]string{
		"sentences":  strings.Repeat("The sky is blue. Grass is green. Water is wet. ", 30),
		"paragraphs": strings.Repeat("First paragraph about something.\n\nSecond paragraph about something else.\n", 20),
		"no spaces":  strings.Repeat("abcdefghij", 100),
	}

	configs := []struct{ size, overlap int }{
		{100, 20},
		{250, 50},
		{50, 0},
	}

	for name, text := range texts {
		for _, cfg := range configs {
			t.Run(name, func(t *testing.T) {
				c, err := NewChunker(cfg.size, cfg.overlap)
				if err != nil {
					t.Fatal(err)
				}
				chunks := c.Chunk(text)
				verifyCoverage(t, text, chunks, cfg.size)
			})
		}
	}
}

// verifyCoverage walks the chunk sequence through the source text: chunk 0
// starts at offset 0, each following chunk starts at or before the previous
// chunk's end, and the final chunk reaches the end of the text.
func verifyCoverage(t *testing.T, text string, chunks []string, size int) {
	t.Helper()

	runes := []rune(text)
	pos := 0 // start of the previous chunk
	end := 0 // end of the previous chunk

	for i, chunk := range chunks {
		cr := []rune(chunk)
		if len(cr) > size {
			t.Fatalf("chunk %d has %d runes, budget is %d", i, len(cr), size)
		}

		found := -1
		lo := pos
		if i == 0 {
			lo = 0
		} else {
			lo = pos + 1
		}
		for p := lo; p <= end && p+len(cr) <= len(runes); p++ {
			if string(runes[p:p+len(cr)]) == chunk {
				found = p
				break
			}
		}
		if i == 0 {
			if len(cr) > len(runes) || string(runes[:len(cr)]) != chunk {
				t.Fatalf("chunk 0 does not start the text")
			}
			found = 0
		} else if found == -1 {
			t.Fatalf("chunk %d leaves a gap after rune %d", i, end)
		}

		pos = found
		end = found + len(cr)
	}

	if end != len(runes) {
		t.Fatalf("chunks end at rune %d, text has %d", end, len(runes))
	}
}

// TestChunkNaturalBoundaries checks that splits land on whitespace when the
// text offers word boundaries.
func TestChunkNaturalBoundaries(t *testing.T) {
	c, err := NewChunker(60, 10)
	if err != nil {
		t.Fatal(err)
	}

	text := strings.Repeat("The sky is blue. Grass is green. ", 20)
	chunks := c.Chunk(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	for i, chunk := range chunks[:len(chunks)-1] {
		last := []rune(chunk)[len([]rune(chunk))-1]
		if !unicode.IsSpace(last) && last != '.' {
			t.Errorf("chunk %d ends mid-word with %q", i, last)
		}
	}
}
