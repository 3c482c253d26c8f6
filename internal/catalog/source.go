package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"storefront/internal/logging"
)

// ErrCatalogUnavailable is returned when neither the remote service nor the fallback
// produced a catalog.
var ErrCatalogUnavailable = errors.New("catalog unavailable")

var (
	errEmptyPayload  = errors.New("empty catalog payload")
	errNegativePrice = errors.New("negative price in catalog payload")
)

//go:embed products.json
var bundledProducts []byte

// maxPayload bounds a catalog response body.
const maxPayload = 8 << 20

// Source provides catalog data.
type Source interface {
	FetchCatalog(ctx context.Context) ([]Product, error)
	// FetchOne reports false with a nil error when the catalog has no such id.
	FetchOne(ctx context.Context, id int) (Product, bool, error)
}

// UnavailableError carries both failures behind ErrCatalogUnavailable.
type UnavailableError struct {
	Primary  error
	Fallback error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s: remote: %v; fallback: %v", ErrCatalogUnavailable, e.Primary, e.Fallback)
}

func (e *UnavailableError) Is(target error) bool {
	return target == ErrCatalogUnavailable
}

func (e *UnavailableError) Unwrap() []error {
	return []error{e.Primary, e.Fallback}
}

// =============================================================================
// REMOTE SOURCE
// =============================================================================

// HTTPSource fetches the catalog from a REST endpoint laid out like fakestoreapi.com:
// GET <endpoint> returns the array, GET <endpoint>/<id> returns one product.
type HTTPSource struct {
	Endpoint  string
	Client    *http.Client
	UserAgent string
}

// NewHTTPSource creates a remote source with the given request timeout.
func NewHTTPSource(endpoint string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		Endpoint:  strings.TrimRight(endpoint, "/"),
		Client:    &http.Client{Timeout: timeout},
		UserAgent: "storefront-shop/1.0",
	}
}

func (s *HTTPSource) FetchCatalog(ctx context.Context) ([]Product, error) {
	var items []Product
	if err := s.get(ctx, s.Endpoint, &items); err != nil {
		return nil, err
	}
	if err := validate(items); err != nil {
		return nil, errors.Wrapf(err, "GET %s", s.Endpoint)
	}
	return items, nil
}

func (s *HTTPSource) FetchOne(ctx context.Context, id int) (Product, bool, error) {
	url := s.Endpoint + "/" + strconv.Itoa(id)
	var p Product
	if err := s.get(ctx, url, &p); err != nil {
		return Product{}, false, err
	}
	if err := validateOne(p); err != nil {
		return Product{}, false, errors.Wrapf(err, "GET %s", url)
	}
	return p, true, nil
}

func (s *HTTPSource) get(ctx context.Context, url string, v any) error {
	if s.Endpoint == "" {
		return errors.New("no catalog endpoint configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "GET %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Errorf("GET %s: HTTP %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayload))
	if err != nil {
		return errors.Wrapf(err, "GET %s: read body", url)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return errors.Wrapf(errEmptyPayload, "GET %s", url)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errors.Wrapf(err, "GET %s: malformed payload", url)
	}
	return nil
}

// =============================================================================
// STATIC SOURCE
// =============================================================================

// FileSource reads a static JSON array. With an empty Path it serves the bundled catalog.
type FileSource struct {
	Path string
}

func (s *FileSource) FetchCatalog(ctx context.Context) ([]Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data := bundledProducts
	origin := "bundled products.json"
	if s.Path != "" {
		b, err := os.ReadFile(s.Path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read fallback catalog")
		}
		data, origin = b, s.Path
	}

	var items []Product
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, errors.Wrapf(err, "malformed catalog in %s", origin)
	}
	if err := validate(items); err != nil {
		return nil, errors.Wrap(err, origin)
	}
	return items, nil
}

func (s *FileSource) FetchOne(ctx context.Context, id int) (Product, bool, error) {
	items, err := s.FetchCatalog(ctx)
	if err != nil {
		return Product{}, false, err
	}
	p, ok := Find(items, id)
	return p, ok, nil
}

// =============================================================================
// FALLBACK COMPOSITION
// =============================================================================

// FallbackSource tries Primary and consults Fallback exactly once when it fails.
type FallbackSource struct {
	Primary  Source
	Fallback Source
}

func (s *FallbackSource) FetchCatalog(ctx context.Context) ([]Product, error) {
	timer := logging.StartTimer(logging.CategoryCatalog, "FetchCatalog")
	defer timer.Stop()

	items, err := s.Primary.FetchCatalog(ctx)
	if err == nil {
		logging.Catalog("Remote catalog loaded: %d products", len(items))
		return items, nil
	}
	logging.Get(logging.CategoryCatalog).Warn("Remote fetch failed, trying fallback: %v", err)

	fallback, ferr := s.Fallback.FetchCatalog(ctx)
	if ferr != nil {
		logging.Get(logging.CategoryCatalog).Error("Fallback fetch failed: %v", ferr)
		return nil, &UnavailableError{Primary: err, Fallback: ferr}
	}
	logging.Catalog("Fallback catalog loaded: %d products", len(fallback))
	return fallback, nil
}

func (s *FallbackSource) FetchOne(ctx context.Context, id int) (Product, bool, error) {
	p, ok, err := s.Primary.FetchOne(ctx, id)
	if err == nil {
		return p, ok, nil
	}
	logging.Get(logging.CategoryCatalog).Warn("Remote fetch of product %d failed, searching fallback: %v", id, err)

	items, ferr := s.Fallback.FetchCatalog(ctx)
	if ferr != nil {
		return Product{}, false, &UnavailableError{Primary: err, Fallback: ferr}
	}
	p, ok = Find(items, id)
	return p, ok, nil
}
