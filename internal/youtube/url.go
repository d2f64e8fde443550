package youtube

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	videoIDRegex   = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	channelIDRegex = regexp.MustCompile(`^UC[A-Za-z0-9_-]{22}$`)
)

// VideoURL returns the canonical watch URL for a video id.
func VideoURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// PlaylistURL returns the canonical URL for a playlist id.
func PlaylistURL(playlistID string) string {
	return "https://www.youtube.com/playlist?list=" + playlistID
}

// ExtractVideoID returns the video id in s, which may be a bare id, a
// youtube.com watch URL or a youtu.be short link. It returns "" when no id
// can be found.
func ExtractVideoID(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if videoIDRegex.MatchString(s) {
		return s
	}

	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	var id string
	switch {
	case strings.HasSuffix(host, "youtube.com") && strings.HasPrefix(u.Path, "/watch"):
		id = u.Query().Get("v")
	case host == "youtu.be":
		id = strings.Trim(u.Path, "/")
	case strings.HasSuffix(host, "youtube.com") && strings.HasPrefix(u.Path, "/shorts/"):
		id = strings.Trim(strings.TrimPrefix(u.Path, "/shorts/"), "/")
	}
	if !videoIDRegex.MatchString(id) {
		return ""
	}
	return id
}

// IsVideoID reports whether s has the shape of a video id.
func IsVideoID(s string) bool {
	return videoIDRegex.MatchString(s)
}

// ResolveChannelURL turns a channel reference (@handle, UC... id, or any
// channel URL) into the URL of its playlists tab.
func ResolveChannelURL(ref string) string {
	ref = strings.TrimSpace(ref)
	switch {
	case strings.HasPrefix(ref, "@"):
		return "https://www.youtube.com/" + ref + "/playlists"
	case channelIDRegex.MatchString(ref):
		return "https://www.youtube.com/channel/" + ref + "/playlists"
	case !strings.Contains(ref, "://") && !strings.Contains(ref, "youtube.com"):
		return "https://www.youtube.com/@" + ref + "/playlists"
	}

	if !strings.Contains(ref, "://") {
		ref = "https://" + ref
	}
	ref = strings.TrimSuffix(ref, "/")
	for _, tab := range []string{"/videos", "/streams", "/shorts", "/featured", "/playlists", "/about"} {
		if strings.HasSuffix(ref, tab) {
			ref = strings.TrimSuffix(ref, tab)
			break
		}
	}
	return ref + "/playlists"
}
