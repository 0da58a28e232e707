// Package routing maps the URL of a checkout page to the funnel route configured for it.
package routing

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/mstgnz/funnelpay/domain"
	"golang.org/x/net/idna"
)

// RouteStore is the lookup the resolver needs
type RouteStore interface {
	FindActiveRoute(ctx context.Context, hostname, pathPrefix string) (*domain.Route, error)
}

// Resolver finds the active route for a page URL. Landing-page builders add and drop
// trailing slashes freely, so /offer and /offer/ resolve to the same route.
type Resolver struct {
	store RouteStore
}

func NewResolver(store RouteStore) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns the route for pageURL. Failures are *domain.Error with kind
// invalid_url or route_not_found; other store errors are returned as they are.
func (r *Resolver) Resolve(ctx context.Context, pageURL string) (*domain.Route, error) {
	hostname, path, err := SplitPageURL(pageURL)
	if err != nil {
		return nil, err
	}

	normalized := NormalizePath(path)

	route, err := r.store.FindActiveRoute(ctx, hostname, normalized)
	if err == nil {
		return withDefaultGateway(route), nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	if normalized != "/" {
		route, err = r.store.FindActiveRoute(ctx, hostname, normalized+"/")
		if err == nil {
			return withDefaultGateway(route), nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	return nil, domain.NewError(domain.KindRouteNotFound, fmt.Sprintf(
		"No active route found for %s%s. Please check that a funnel route is configured with hostname=%q and path_prefix=%q (or %q) and is_active=true.",
		hostname, path, hostname, normalized, normalized+"/"))
}

// SplitPageURL parses an absolute URL into its lower-cased ASCII hostname and escaped path
func SplitPageURL(pageURL string) (hostname, path string, err error) {
	u, perr := url.Parse(strings.TrimSpace(pageURL))
	if perr != nil || u.Scheme == "" || u.Hostname() == "" {
		return "", "", domain.NewError(domain.KindInvalidURL, "page_url must be a valid URL")
	}

	hostname = strings.ToLower(u.Hostname())
	if ascii, err := idna.Lookup.ToASCII(hostname); err == nil {
		hostname = ascii
	}

	path = u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return hostname, path, nil
}

// NormalizePath strips exactly one trailing slash unless the path is the root
func NormalizePath(path string) string {
	if path != "/" && strings.HasSuffix(path, "/") {
		return path[:len(path)-1]
	}
	return path
}

func withDefaultGateway(route *domain.Route) *domain.Route {
	if route.Gateway == "" {
		resolved := *route
		resolved.Gateway = domain.DefaultGateway
		return &resolved
	}
	return route
}
