package service

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/talktuber/talktuber/internal/domain"
	"github.com/talktuber/talktuber/internal/port"
)

// fakeAI is a deterministic in-memory port.AIProvider. Embeddings are
// bag-of-words vectors so cosine similarity behaves sensibly in tests.
type fakeAI struct {
	mu         sync.Mutex
	embedCalls int
	chatCalls  int

	embedFn func(text string) ([]float32, error)
	chatFn  func(system, user string, contextChunks []string, opts port.ChatOptions) (string, error)
}

func (f *fakeAI) ModelName() string { return "fake-model" }

func (f *fakeAI) Embed(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	f.embedCalls++
	f.mu.Unlock()
	if f.embedFn != nil {
		return f.embedFn(text)
	}
	return wordVector(text), nil
}

func (f *fakeAI) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	f.embedCalls++
	f.mu.Unlock()
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if f.embedFn != nil {
			v, err := f.embedFn(t)
			if err != nil {
				return nil, err
			}
			out[i] = v
			continue
		}
		out[i] = wordVector(t)
	}
	return out, nil
}

func (f *fakeAI) Chat(ctx context.Context, system, user string, contextChunks []string, opts port.ChatOptions) (string, error) {
	f.mu.Lock()
	f.chatCalls++
	f.mu.Unlock()
	if f.chatFn != nil {
		return f.chatFn(system, user, contextChunks, opts)
	}
	return "ok", nil
}

func (f *fakeAI) calls() (embed, chat int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.embedCalls, f.chatCalls
}

const fakeVectorDim = 16

// wordVector hashes lowercase words into a fixed-dimension count vector.
func wordVector(text string) []float32 {
	v := make([]float32, fakeVectorDim)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,!?\"'")
		if w == "" {
			continue
		}
		h := 0
		for _, r := range w {
			h = h*31 + int(r)
		}
		if h < 0 {
			h = -h
		}
		v[h%fakeVectorDim]++
	}
	return v
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// memVideoStore is an in-memory VideoStore.
type memVideoStore struct {
	mu     sync.Mutex
	videos map[string]*domain.Video
}

func newMemVideoStore() *memVideoStore {
	return &memVideoStore{videos: map[string]*domain.Video{}}
}

func (m *memVideoStore) GetVideo(ctx context.Context, videoID string) (*domain.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.videos[videoID]
	if !ok {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (m *memVideoStore) MarkProcessing(ctx context.Context, videoID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.videos[videoID] = &domain.Video{VideoID: videoID, Status: domain.VideoStatusProcessing}
	return nil
}

func (m *memVideoStore) MarkProcessed(ctx context.Context, videoID, languageCode string, translated bool, chunkCount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.videos[videoID] = &domain.Video{
		VideoID:      videoID,
		LanguageCode: languageCode,
		Translated:   translated,
		ChunkCount:   chunkCount,
		Status:       domain.VideoStatusProcessed,
	}
	return nil
}

func (m *memVideoStore) MarkFailed(ctx context.Context, videoID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.videos[videoID]
	if !ok {
		v = &domain.Video{VideoID: videoID}
		m.videos[videoID] = v
	}
	v.Status = domain.VideoStatusFailed
	return nil
}

// memVectorIndex is an in-memory VectorIndex doing real cosine search.
type memVectorIndex struct {
	mu         sync.Mutex
	partitions map[string][]domain.ChunkEmbedding

	storeErr error // when set, StoreBatch fails
}

func newMemVectorIndex() *memVectorIndex {
	return &memVectorIndex{partitions: map[string][]domain.ChunkEmbedding{}}
}

func (m *memVectorIndex) StoreBatch(ctx context.Context, embeddings []domain.ChunkEmbedding) error {
	if m.storeErr != nil {
		return m.storeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range embeddings {
		m.partitions[e.VideoID] = append(m.partitions[e.VideoID], e)
	}
	return nil
}

func (m *memVectorIndex) SearchSimilar(ctx context.Context, videoID string, queryVector []float32, limit int) ([]domain.SimilarChunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var results []domain.SimilarChunk
	for _, e := range m.partitions[videoID] {
		results = append(results, domain.SimilarChunk{
			ChunkEmbedding: e,
			Similarity:     cosine(queryVector, e.Vector),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (m *memVectorIndex) CountByVideo(ctx context.Context, videoID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.partitions[videoID]), nil
}

func (m *memVectorIndex) DeleteByVideo(ctx context.Context, videoID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.partitions, videoID)
	return nil
}

// fakeSource is an in-memory port.TranscriptSource.
type fakeSource struct {
	tracks      []domain.TranscriptTrack
	transcripts map[string]*domain.Transcript // keyed by language code
	listErr     error
	fetchCalls  int
}

func (f *fakeSource) ListTracks(ctx context.Context, videoID string) ([]domain.TranscriptTrack, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.tracks, nil
}

func (f *fakeSource) Fetch(ctx context.Context, videoID string, track domain.TranscriptTrack) (*domain.Transcript, error) {
	f.fetchCalls++
	t, ok := f.transcripts[track.LanguageCode]
	if !ok {
		return nil, port.ErrTranscriptUnavailable
	}
	return t, nil
}

func snippetTranscript(videoID, lang string, lines ...string) *domain.Transcript {
	t := &domain.Transcript{VideoID: videoID, LanguageCode: lang}
	for i, line := range lines {
		t.Snippets = append(t.Snippets, domain.TranscriptSnippet{
			Text:     line,
			Start:    float64(i) * 2,
			Duration: 2,
		})
	}
	return t
}
