// Package githubsync mirrors markdown documentation from a GitHub
// repository into a local source directory, so remote docs can be
// listed, classified and indexed like any other local source.
package githubsync

import (
	"context"
	"os"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v81/github"
)

// Client wraps the GitHub API client with rate limiting support.
type Client struct {
	*github.Client
}

// NewClient creates a GitHub client with automatic rate limit waiting.
// When the GITHUB_TOKEN environment variable is set the client is
// authenticated, which raises the hourly request quota.
func NewClient(ctx context.Context) (*Client, error) {
	rateLimiter, err := github_ratelimit.NewRateLimitWaiterClient(nil)
	if err != nil {
		return nil, err
	}

	ghClient := github.NewClient(rateLimiter)
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		ghClient = ghClient.WithAuthToken(token)
	}

	return &Client{Client: ghClient}, nil
}
