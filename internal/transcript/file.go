package transcript

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"ytshelf/internal/youtube"
)

var (
	// ErrMissingVideoID is returned when a transcript file names no video.
	ErrMissingVideoID = errors.New("transcript file has no video id")
	// ErrEmptyTranscript is returned when a transcript file has no body.
	ErrEmptyTranscript = errors.New("transcript file has no transcript text")
)

// File is a transcript stored as text with a small header:
//
//	TITLE: <title>
//	URL: <watch url>
//	ID: <video id>
//
//	<transcript body>
type File struct {
	Title   string
	URL     string
	VideoID string
	Body    string
}

// ParseFile reads a transcript file. The video id comes from the URL header
// when it parses, else from the ID header. Title and URL get defaults derived
// from the id when absent.
func ParseFile(r io.Reader) (File, error) {
	var (
		f     File
		lines []string
	)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return File{}, fmt.Errorf("read transcript file: %w", err)
	}

	var idHeader string
	bodyStart := 0
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "TITLE:"):
			f.Title = strings.TrimSpace(strings.TrimPrefix(line, "TITLE:"))
		case strings.HasPrefix(line, "URL:"):
			f.URL = strings.TrimSpace(strings.TrimPrefix(line, "URL:"))
			f.VideoID = youtube.ExtractVideoID(f.URL)
		case strings.HasPrefix(line, "ID:"):
			idHeader = strings.TrimSpace(strings.TrimPrefix(line, "ID:"))
		}
		if (f.Title != "" || f.VideoID != "" || idHeader != "") && strings.TrimSpace(line) == "" {
			bodyStart = i + 1
			break
		}
	}

	if f.VideoID == "" {
		f.VideoID = idHeader
	}
	if f.VideoID == "" {
		return File{}, ErrMissingVideoID
	}
	if f.Title == "" {
		f.Title = "Video " + f.VideoID
	}
	if f.URL == "" {
		f.URL = youtube.VideoURL(f.VideoID)
	}

	f.Body = strings.Join(lines[bodyStart:], "\n")
	if strings.TrimSpace(f.Body) == "" {
		return File{}, ErrEmptyTranscript
	}
	return f, nil
}

// WriteFile renders f in the format ParseFile reads.
func WriteFile(w io.Writer, f File) error {
	url := f.URL
	if url == "" {
		url = youtube.VideoURL(f.VideoID)
	}
	if _, err := fmt.Fprintf(w, "TITLE: %s\nURL: %s\nID: %s\n\n%s\n", f.Title, url, f.VideoID, f.Body); err != nil {
		return fmt.Errorf("write transcript file: %w", err)
	}
	return nil
}
