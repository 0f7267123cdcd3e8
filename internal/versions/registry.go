package versions

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/boshu2/claude-hooks/internal/logging"
)

// DefaultLookupLimit caps concurrent registry requests.
const DefaultLookupLimit = 8

// maxResponseBytes bounds registry documents; npm packuments for large
// packages run to tens of megabytes.
const maxResponseBytes = 64 << 20

// Registry resolves the latest published version of a package.
type Registry interface {
	Latest(ctx context.Context, name string) (string, error)
}

// HTTPRegistry queries the npm or PyPI JSON API.
type HTTPRegistry struct {
	kind    RegistryKind
	baseURL string
	client  *http.Client
}

// NewHTTPRegistry creates a registry client. A nil client gets one with the
// given timeout.
func NewHTTPRegistry(kind RegistryKind, baseURL string, timeout time.Duration, client *http.Client) *HTTPRegistry {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &HTTPRegistry{
		kind:    kind,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// Latest implements Registry.
func (r *HTTPRegistry) Latest(ctx context.Context, name string) (string, error) {
	var endpoint, path string
	switch r.kind {
	case RegistryPyPI:
		endpoint = r.baseURL + "/" + url.PathEscape(name) + "/json"
		path = "info.version"
	default:
		endpoint = r.baseURL + "/" + url.PathEscape(name)
		path = "dist-tags.latest"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s lookup %s: %w", r.kind, name, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s lookup %s: %s", r.kind, name, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("%s lookup %s: read body: %w", r.kind, name, err)
	}
	version := gjson.GetBytes(body, path).String()
	if version == "" {
		return "", fmt.Errorf("%s lookup %s: %w", r.kind, name, ErrNoVersion)
	}
	return version, nil
}

// LatestVersions looks up every name concurrently, at most limit at a time.
// Names whose lookup fails are absent from the result.
func LatestVersions(ctx context.Context, reg Registry, names []string, limit int, logger *zap.Logger) map[string]string {
	log := logging.OrNop(logger)
	if limit <= 0 {
		limit = DefaultLookupLimit
	}

	var mu sync.Mutex
	latest := make(map[string]string, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, name := range names {
		g.Go(func() error {
			v, err := reg.Latest(gctx, name)
			if err != nil {
				log.Debug("registry lookup failed", zap.String("package", name), zap.Error(err))
				return nil
			}
			mu.Lock()
			latest[name] = v
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // lookups never return errors

	return latest
}
