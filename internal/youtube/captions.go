package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
)

// captionTrack is one downloadable rendition of a caption language.
type captionTrack struct {
	Ext  string `json:"ext"`
	URL  string `json:"url"`
	Name string `json:"name"`
}

// selectCaptionTrack picks the json3 track to download: manual captions in a
// preferred language, then automatic captions in a preferred language, then
// any manual track, then the automatic track in the video's own language
// (yt-dlp keys it "<lang>-orig"). It returns the track and the language tag
// to store.
func selectCaptionTrack(manual, automatic map[string][]captionTrack, preferred []string) (captionTrack, string, bool) {
	for _, lang := range preferred {
		if t, ok := json3Track(manual[lang]); ok {
			return t, lang, true
		}
	}
	for _, lang := range preferred {
		if t, ok := json3Track(automatic[lang]); ok {
			return t, lang, true
		}
	}
	for _, lang := range sortedKeys(manual) {
		if lang == "live_chat" {
			continue
		}
		if t, ok := json3Track(manual[lang]); ok {
			return t, lang, true
		}
	}
	for _, lang := range sortedKeys(automatic) {
		if !strings.HasSuffix(lang, "-orig") {
			continue
		}
		if t, ok := json3Track(automatic[lang]); ok {
			return t, strings.TrimSuffix(lang, "-orig"), true
		}
	}
	return captionTrack{}, "", false
}

func json3Track(tracks []captionTrack) (captionTrack, bool) {
	for _, t := range tracks {
		if t.Ext == "json3" && t.URL != "" {
			return t, true
		}
	}
	return captionTrack{}, false
}

func sortedKeys(m map[string][]captionTrack) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// json3Response is YouTube's timed-text json3 payload.
type json3Response struct {
	Events []json3Event `json:"events"`
}

type json3Event struct {
	TStartMs int64          `json:"tStartMs"`
	Segs     []json3Segment `json:"segs,omitempty"`
}

type json3Segment struct {
	UTF8 string `json:"utf8"`
}

// fetchCaptions downloads a json3 caption track and flattens it to text.
func (c *Client) fetchCaptions(ctx context.Context, trackURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, trackURL, nil)
	if err != nil {
		return "", fmt.Errorf("build captions request: %w", err)
	}

	resp, err := c.httpc().Do(req)
	if err != nil {
		return "", fmt.Errorf("captions request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return "", ErrTranscriptUnavailable
	case http.StatusTooManyRequests:
		return "", ErrRateLimited
	default:
		return "", fmt.Errorf("captions request returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read captions: %w", err)
	}
	return parseJSON3(body)
}

// parseJSON3 joins the text of every caption event with single spaces.
func parseJSON3(data []byte) (string, error) {
	var resp json3Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("unmarshal json3 captions: %w", err)
	}

	parts := make([]string, 0, len(resp.Events))
	for _, event := range resp.Events {
		if len(event.Segs) == 0 {
			continue
		}
		var text strings.Builder
		for _, seg := range event.Segs {
			text.WriteString(seg.UTF8)
		}
		line := strings.Join(strings.Fields(text.String()), " ")
		if line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " "), nil
}
