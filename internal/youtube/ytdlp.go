package youtube

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/exec"
	"strings"
	"time"
)

const (
	defaultYtdlpPath    = "yt-dlp"
	defaultYtdlpTimeout = 2 * time.Minute
	defaultHTTPTimeout  = 30 * time.Second
)

// DefaultLanguages is the caption language preference used when none is set.
var DefaultLanguages = []string{"en", "en-US", "en-GB"}

// commandRunner executes a program and returns its stdout and stderr.
type commandRunner func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

// Client talks to YouTube through a yt-dlp subprocess, plus plain HTTP for
// caption tracks.
type Client struct {
	// Path is the yt-dlp executable. Defaults to "yt-dlp".
	Path string
	// Timeout bounds each yt-dlp invocation.
	Timeout time.Duration
	// ExtraArgs are appended to every yt-dlp invocation.
	ExtraArgs []string
	// Languages is the caption language preference, most preferred first.
	Languages []string

	httpClient *http.Client
	run        commandRunner
}

// NewClient returns a Client with defaults applied.
func NewClient(path string, timeout time.Duration, languages []string) *Client {
	if path == "" {
		path = defaultYtdlpPath
	}
	if timeout <= 0 {
		timeout = defaultYtdlpTimeout
	}
	if len(languages) == 0 {
		languages = DefaultLanguages
	}
	return &Client{
		Path:       path,
		Timeout:    timeout,
		Languages:  languages,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		run:        execRunner,
	}
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// ytdlp runs yt-dlp with args and maps failures onto the package sentinels.
// notFound is the sentinel used when yt-dlp reports the target is missing.
func (c *Client) ytdlp(ctx context.Context, notFound error, args ...string) ([]byte, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultYtdlpTimeout
	}
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	run := c.run
	if run == nil {
		run = execRunner
	}
	args = append(append([]string{}, args...), c.ExtraArgs...)

	stdout, stderr, err := run(cmdCtx, c.path(), args...)
	if err == nil {
		return stdout, nil
	}

	if errors.Is(err, exec.ErrNotFound) {
		return nil, ErrYtdlpNotInstalled
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if errors.Is(cmdCtx.Err(), context.DeadlineExceeded) {
		return nil, ErrNetworkTimeout
	}
	return nil, classifyStderr(string(stderr), notFound, err)
}

func classifyStderr(msg string, notFound, err error) error {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "429") || strings.Contains(lower, "too many requests"):
		return ErrRateLimited
	case strings.Contains(lower, "video unavailable"),
		strings.Contains(lower, "private video"),
		strings.Contains(lower, "has been removed"),
		strings.Contains(lower, "members-only"),
		strings.Contains(lower, "sign in to confirm your age"):
		return ErrVideoUnavailable
	case strings.Contains(lower, "does not exist"),
		strings.Contains(lower, "not found"),
		strings.Contains(lower, "http error 404"):
		return notFound
	case strings.Contains(lower, "timed out"):
		return ErrNetworkTimeout
	}
	return fmt.Errorf("yt-dlp failed: %w: %s", err, strings.TrimSpace(msg))
}

func (c *Client) path() string {
	if c.Path != "" {
		return c.Path
	}
	return defaultYtdlpPath
}

func (c *Client) httpc() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return &http.Client{Timeout: defaultHTTPTimeout}
}

func (c *Client) languages() []string {
	if len(c.Languages) > 0 {
		return c.Languages
	}
	return DefaultLanguages
}

// coalesce returns the first non-empty string.
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
