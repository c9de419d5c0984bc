package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/basket/pkg/types"
)

// maxCatalogBytes caps how much of a remote catalog is read.
const maxCatalogBytes = 8 << 20

type loadOptions struct {
	client *http.Client
	logger *zap.Logger
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

// WithHTTPClient sets the client used for http(s) sources.
func WithHTTPClient(c *http.Client) LoadOption {
	return func(o *loadOptions) {
		if c != nil {
			o.client = c
		}
	}
}

// WithLoadLogger sets the logger used by Load.
func WithLoadLogger(l *zap.Logger) LoadOption {
	return func(o *loadOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// Load reads a JSON array of restaurants from a file path or an http(s)
// URL. It makes exactly one attempt. Every failure wraps
// types.ErrCatalogUnavailable.
func Load(ctx context.Context, source string, opts ...LoadOption) ([]types.CatalogItem, error) {
	o := loadOptions{client: http.DefaultClient, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	data, err := fetch(ctx, source, o.client)
	if err != nil {
		o.logger.Warn("catalog fetch failed", zap.String("source", source), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", types.ErrCatalogUnavailable, err)
	}

	var items []types.CatalogItem
	if err := json.Unmarshal(data, &items); err != nil {
		o.logger.Warn("catalog is not a JSON array", zap.String("source", source), zap.Error(err))
		return nil, fmt.Errorf("%w: decode %s: %v", types.ErrCatalogUnavailable, source, err)
	}

	o.logger.Debug("catalog loaded", zap.String("source", source), zap.Int("items", len(items)))
	return items, nil
}

func fetch(ctx context.Context, source string, client *http.Client) ([]byte, error) {
	if source == "" {
		return nil, fmt.Errorf("no catalog source")
	}
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return os.ReadFile(source)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", source, resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxCatalogBytes))
}
