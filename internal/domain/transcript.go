package domain

// TranscriptSnippet is a single caption line as delivered by the provider.
type TranscriptSnippet struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// TranscriptTrack describes one caption track offered for a video.
type TranscriptTrack struct {
	LanguageCode   string `json:"language_code"`
	LanguageName   string `json:"language"`
	IsGenerated    bool   `json:"is_generated"`
	IsTranslatable bool   `json:"is_translatable"`
}

// Transcript is a fetched caption track reduced to its snippets.
// It is never persisted; only derived chunks and vectors are stored.
type Transcript struct {
	VideoID      string
	LanguageCode string
	IsGenerated  bool
	Snippets     []TranscriptSnippet
}

// Text concatenates all snippets into a single blob for downstream processing.
func (t *Transcript) Text() string {
	total := 0
	for _, s := range t.Snippets {
		total += len(s.Text) + 1
	}
	buf := make([]byte, 0, total)
	for i, s := range t.Snippets {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = append(buf, s.Text...)
	}
	return string(buf)
}

// TranscriptResult is the outcome of transcript acquisition: the text that
// will feed the pipeline plus the language it arrived in.
type TranscriptResult struct {
	VideoID      string
	Text         string
	LanguageCode string
	IsGenerated  bool
}

// IsEnglish reports whether the transcript needs no translation.
func (r *TranscriptResult) IsEnglish() bool {
	return IsEnglishCode(r.LanguageCode)
}

// IsEnglishCode matches "en" and regional variants like "en-US" or "en-GB".
func IsEnglishCode(code string) bool {
	if code == "en" {
		return true
	}
	return len(code) > 3 && (code[:3] == "en-" || code[:3] == "en_")
}
