package youtube

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtube.com/watch?list=PL1&v=dQw4w9WgXcQ&t=42", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"  dQw4w9WgXcQ  ", "dQw4w9WgXcQ"},
		{"https://example.com/watch?v=dQw4w9WgXcQ", ""},
		{"https://www.youtube.com/playlist?list=PL123", ""},
		{"too-short", ""},
		{"", ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ExtractVideoID(tc.in), tc.in)
	}
}

func TestResolveChannelURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"@gophers", "https://www.youtube.com/@gophers/playlists"},
		{"UCabcdefghijklmnopqrstuv", "https://www.youtube.com/channel/UCabcdefghijklmnopqrstuv/playlists"},
		{"gophers", "https://www.youtube.com/@gophers/playlists"},
		{"https://www.youtube.com/@gophers/videos", "https://www.youtube.com/@gophers/playlists"},
		{"https://www.youtube.com/c/Gophers/", "https://www.youtube.com/c/Gophers/playlists"},
		{"www.youtube.com/user/gopher", "https://www.youtube.com/user/gopher/playlists"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ResolveChannelURL(tc.in), tc.in)
	}
}

func TestCanonicalURLs(t *testing.T) {
	assert.Equal(t, "https://www.youtube.com/watch?v=abc", VideoURL("abc"))
	assert.Equal(t, "https://www.youtube.com/playlist?list=PL1", PlaylistURL("PL1"))
}
