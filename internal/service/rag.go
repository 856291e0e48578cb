package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/talktuber/talktuber/internal/domain"
	"github.com/talktuber/talktuber/internal/port"
)

const answerSystemPrompt = `You are TalkTuber, an assistant that answers questions about a YouTube video using ONLY the transcript passages provided as context.
Answer strictly from the context. Do not use outside knowledge.
If the context does not contain the answer, say explicitly that the transcript does not cover it.
Do not add conversational filler, greetings, or apologies.`

const compressSystemPrompt = `Extract the parts of the given transcript passage that are relevant to the user's question.
Return the relevant parts verbatim, unchanged. If nothing in the passage is relevant, return exactly NO_OUTPUT.`

// compressMarker is what the extraction prompt returns for irrelevant passages.
const compressMarker = "NO_OUTPUT"

// RAGConfig tunes retrieval and answer synthesis.
type RAGConfig struct {
	SearchK         int     // similarity search fan-out
	Temperature     float64 // synthesis sampling temperature
	CompressContext bool    // per-chunk LLM filtering of retrieved passages
}

// RAGService answers questions about a processed video, grounded in the
// chunks retrieved from that video's partition.
type RAGService struct {
	ai     port.AIProvider
	videos VideoStore
	index  VectorIndex
	cfg    RAGConfig
}

// NewRAGService creates a RAG service over the given stores.
func NewRAGService(ai port.AIProvider, videos VideoStore, index VectorIndex, cfg RAGConfig) *RAGService {
	if cfg.SearchK <= 0 {
		cfg.SearchK = 5
	}
	return &RAGService{ai: ai, videos: videos, index: index, cfg: cfg}
}

// Retrieve returns the passages most similar to the question within the
// video's partition. It fails fast with port.ErrVideoNotProcessed before
// making any model call when the video has no complete index.
func (s *RAGService) Retrieve(ctx context.Context, videoID, question string) ([]domain.SimilarChunk, error) {
	processed, err := videoProcessed(ctx, s.videos, s.index, videoID)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	if !processed {
		return nil, fmt.Errorf("retrieve %q: %w", videoID, port.ErrVideoNotProcessed)
	}

	queryVector, err := s.ai.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("retrieve: embed question: %w", err)
	}

	chunks, err := s.index.SearchSimilar(ctx, videoID, queryVector, s.cfg.SearchK)
	if err != nil {
		return nil, fmt.Errorf("retrieve: search similar: %w", err)
	}

	if s.cfg.CompressContext {
		chunks = s.compress(ctx, question, chunks)
	}
	return chunks, nil
}

// Answer retrieves grounding context for the question and asks the model to
// compose an answer strictly from it.
func (s *RAGService) Answer(ctx context.Context, videoID, question string) (string, error) {
	chunks, err := s.Retrieve(ctx, videoID, question)
	if err != nil {
		return "", err
	}

	contextParts := make([]string, len(chunks))
	for i, chunk := range chunks {
		contextParts[i] = chunk.Content
	}

	answer, err := s.ai.Chat(ctx, answerSystemPrompt, question, contextParts, port.ChatOptions{
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("synthesize answer: %w", err)
	}
	return answer, nil
}

// compress filters each retrieved chunk down to the sub-span relevant to the
// question. A failed extraction keeps the full chunk; an extraction that
// reports nothing relevant drops the chunk. Quality/cost trade-off, not
// required for correctness.
func (s *RAGService) compress(ctx context.Context, question string, chunks []domain.SimilarChunk) []domain.SimilarChunk {
	out := chunks[:0]
	for _, chunk := range chunks {
		extracted, err := s.ai.Chat(ctx, compressSystemPrompt, question, []string{chunk.Content}, port.ChatOptions{})
		if err != nil {
			slog.Warn("context compression failed, keeping full chunk",
				"video_id", chunk.VideoID,
				"chunk_index", chunk.ChunkIndex,
				"error", err,
			)
			out = append(out, chunk)
			continue
		}

		extracted = strings.TrimSpace(extracted)
		if extracted == "" || extracted == compressMarker {
			continue
		}
		chunk.Content = extracted
		out = append(out, chunk)
	}
	return out
}
