package youtube

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/talktuber/talktuber/internal/domain"
	"github.com/talktuber/talktuber/internal/port"
)

// Client fetches caption tracks from the YouTube timedtext API.
// It implements port.TranscriptSource.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a caption client. baseURL is normally
// https://www.youtube.com; tests point it at a local server.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// trackList mirrors the timedtext track enumeration XML.
type trackList struct {
	XMLName xml.Name `xml:"transcript_list"`
	Tracks  []struct {
		LangCode     string `xml:"lang_code,attr"`
		LangOriginal string `xml:"lang_original,attr"`
		Kind         string `xml:"kind,attr"` // "asr" = auto-generated
	} `xml:"track"`
}

// ListTracks enumerates the caption tracks offered for a video, preserving
// the provider's order. An empty result means the video has no captions.
func (c *Client) ListTracks(ctx context.Context, videoID string) ([]domain.TranscriptTrack, error) {
	q := url.Values{}
	q.Set("type", "list")
	q.Set("v", videoID)

	body, err := c.get(ctx, "/api/timedtext?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("list caption tracks: %w", err)
	}

	// The provider answers an empty body (not an error status) when captions
	// are disabled or absent.
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, nil
	}

	var list trackList
	if err := xml.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("decode caption track list: %w", err)
	}

	tracks := make([]domain.TranscriptTrack, 0, len(list.Tracks))
	for _, t := range list.Tracks {
		tracks = append(tracks, domain.TranscriptTrack{
			LanguageCode:   t.LangCode,
			LanguageName:   t.LangOriginal,
			IsGenerated:    t.Kind == "asr",
			IsTranslatable: true,
		})
	}
	return tracks, nil
}

// timedTextEvents mirrors the fmt=json3 caption payload.
type timedTextEvents struct {
	Events []struct {
		StartMs    int64 `json:"tStartMs"`
		DurationMs int64 `json:"dDurationMs"`
		Segs       []struct {
			UTF8 string `json:"utf8"`
		} `json:"segs"`
	} `json:"events"`
}

// Fetch downloads one caption track as ordered snippets.
func (c *Client) Fetch(ctx context.Context, videoID string, track domain.TranscriptTrack) (*domain.Transcript, error) {
	q := url.Values{}
	q.Set("v", videoID)
	q.Set("lang", track.LanguageCode)
	q.Set("fmt", "json3")
	if track.IsGenerated {
		q.Set("kind", "asr")
	}

	body, err := c.get(ctx, "/api/timedtext?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("fetch captions: %w", err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, fmt.Errorf("fetch captions: %w", port.ErrTranscriptUnavailable)
	}

	var events timedTextEvents
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("decode captions: %w", err)
	}

	var snippets []domain.TranscriptSnippet
	for _, ev := range events.Events {
		var sb strings.Builder
		for _, seg := range ev.Segs {
			sb.WriteString(seg.UTF8)
		}
		text := strings.TrimSpace(strings.ReplaceAll(sb.String(), "\n", " "))
		if text == "" {
			continue
		}
		snippets = append(snippets, domain.TranscriptSnippet{
			Text:     text,
			Start:    float64(ev.StartMs) / 1000,
			Duration: float64(ev.DurationMs) / 1000,
		})
	}

	if len(snippets) == 0 {
		return nil, fmt.Errorf("fetch captions: empty track: %w", port.ErrTranscriptUnavailable)
	}

	return &domain.Transcript{
		VideoID:      videoID,
		LanguageCode: track.LanguageCode,
		IsGenerated:  track.IsGenerated,
		Snippets:     snippets,
	}, nil
}

// get is a helper for GET requests against the captions provider.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, port.ErrTranscriptUnavailable
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("captions API error (%d): %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
