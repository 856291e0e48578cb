package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"

	"github.com/talktuber/talktuber/internal/domain"
	"github.com/talktuber/talktuber/internal/port"
)

const translateSystemPrompt = `You are a professional translator. Translate the user's text to English.
Return ONLY the literal translation. No commentary, no notes, no explanations.
Preserve the meaning and tone of the original text.`

// translateTemperature favors determinism over creativity for translations.
const translateTemperature = 0.2

// Translator converts non-English transcript text to English via the chat
// model, one word-bounded chunk at a time. The chunk budget protects the
// model's input-length limit and is independent of the retrieval chunk size.
type Translator struct {
	ai        port.AIProvider
	chunkSize int
	limiter   *rate.Limiter
}

// NewTranslator creates a translator. rps throttles calls to the model
// service; chunkSize is the per-call character budget.
func NewTranslator(ai port.AIProvider, chunkSize int, rps float64) *Translator {
	return &Translator{
		ai:        ai,
		chunkSize: chunkSize,
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Translate converts text to English. Identity when the source language is
// already English. A failed chunk keeps its original-language text and
// translation continues: partial translation beats total failure.
func (t *Translator) Translate(ctx context.Context, text, sourceLanguage string) (string, error) {
	if domain.IsEnglishCode(sourceLanguage) || strings.TrimSpace(text) == "" {
		return text, nil
	}

	chunks := splitWordChunks(text, t.chunkSize)
	translated := make([]string, 0, len(chunks))

	for i, chunk := range chunks {
		if err := t.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("translate: %w", err)
		}

		out, err := t.ai.Chat(ctx, translateSystemPrompt, chunk, nil, port.ChatOptions{
			Temperature: translateTemperature,
		})
		if err != nil {
			slog.Warn("translation chunk failed, keeping original text",
				"chunk", i,
				"language", sourceLanguage,
				"error", err,
			)
			translated = append(translated, chunk)
			continue
		}
		translated = append(translated, strings.TrimSpace(out))
	}

	return strings.Join(translated, " "), nil
}

// splitWordChunks splits text at word boundaries into pieces no longer than
// budget characters. A single word over budget becomes its own chunk rather
// than being cut.
func splitWordChunks(text string, budget int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	var sb strings.Builder
	for _, w := range words {
		if sb.Len() > 0 && sb.Len()+1+len(w) > budget {
			chunks = append(chunks, sb.String())
			sb.Reset()
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(w)
	}
	if sb.Len() > 0 {
		chunks = append(chunks, sb.String())
	}
	return chunks
}
