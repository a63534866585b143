// Package provider defines the interface for story resolvers
// and their implementations.
package provider

import (
	"context"

	"fbstory/internal/media"
)

// Resolver is the interface that story resolvers must implement.
type Resolver interface {
	// Resolve turns a share link into a verdict. It never returns an error;
	// failures are reported through the verdict's outcome and message.
	Resolve(ctx context.Context, target string) media.Verdict
}

// Fetcher retrieves pages for a resolver.
type Fetcher interface {
	// Fetch returns the body at target after redirects.
	Fetch(ctx context.Context, target string) (string, error)

	// ResolveEffective returns the URL target redirects to, without reading the body.
	ResolveEffective(ctx context.Context, target string) (string, error)
}
