package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func product(id int, title, price string) Product {
	return Product{ID: id, Title: title, Price: decimal.RequireFromString(price)}
}

func ids(items []Product) []int {
	out := make([]int, len(items))
	for i, p := range items {
		out[i] = p.ID
	}
	return out
}

// countingSource records calls and returns canned results.
type countingSource struct {
	items []Product
	err   error
	calls atomic.Int32
}

func (s *countingSource) FetchCatalog(ctx context.Context) ([]Product, error) {
	s.calls.Add(1)
	return s.items, s.err
}

func (s *countingSource) FetchOne(ctx context.Context, id int) (Product, bool, error) {
	s.calls.Add(1)
	if s.err != nil {
		return Product{}, false, s.err
	}
	p, ok := Find(s.items, id)
	return p, ok, nil
}

// =============================================================================
// HTTP SOURCE
// =============================================================================

func TestHTTPSource_FetchCatalog(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"id":1,"title":"Bag","price":109.95,"image":"a.jpg","description":"d","category":"c","rating":{"rate":3.9,"count":120}}]`)
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL+"/", time.Second)
	items, err := src.FetchCatalog(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, 1, items[0].ID)
	assert.True(t, items[0].Price.Equal(decimal.RequireFromString("109.95")))
	require.NotNil(t, items[0].Rating)
	assert.Equal(t, 120, items[0].Rating.Count)
	assert.Equal(t, "storefront-shop/1.0", gotUA)
}

func TestHTTPSource_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		timeout time.Duration
		delay   time.Duration
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `[]`},
		{name: "malformed", status: http.StatusOK, body: `{"not":"an array"`},
		{name: "empty body", status: http.StatusOK, body: ``},
		{name: "empty array", status: http.StatusOK, body: `[]`},
		{name: "negative price", status: http.StatusOK, body: `[{"id":1,"title":"x","price":-1}]`},
		{name: "timeout", status: http.StatusOK, body: `[{"id":1,"title":"x","price":1}]`, timeout: 20 * time.Millisecond, delay: 200 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.delay > 0 {
					time.Sleep(tt.delay)
				}
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			timeout := tt.timeout
			if timeout == 0 {
				timeout = time.Second
			}
			_, err := NewHTTPSource(srv.URL, timeout).FetchCatalog(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestHTTPSource_FetchOne(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/products/3":
			fmt.Fprint(w, `{"id":3,"title":"Jacket","price":55.99}`)
		case "/products/99":
			// fakestoreapi answers unknown ids with an empty 200
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL+"/products", time.Second)

	p, ok, err := src.FetchOne(context.Background(), 3)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Jacket", p.Title)

	_, _, err = src.FetchOne(context.Background(), 99)
	assert.Error(t, err, "empty single-product body is a failure")
}

func TestHTTPSource_NoEndpoint(t *testing.T) {
	_, err := (&HTTPSource{}).FetchCatalog(context.Background())
	assert.Error(t, err)
}

// =============================================================================
// FILE SOURCE
// =============================================================================

func TestFileSource_Bundled(t *testing.T) {
	items, err := (&FileSource{}).FetchCatalog(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, items)

	for _, p := range items {
		assert.NotZero(t, p.ID)
		assert.NotEmpty(t, p.Title)
		assert.False(t, p.Price.IsNegative())
	}
}

func TestFileSource_Path(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":42,"title":"Local","price":1.5}]`), 0644))

	src := &FileSource{Path: path}
	items, err := src.FetchCatalog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{42}, ids(items))

	p, ok, err := src.FetchOne(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Local", p.Title)

	_, ok, err = src.FetchOne(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileSource_MissingPath(t *testing.T) {
	_, err := (&FileSource{Path: filepath.Join(t.TempDir(), "absent.json")}).FetchCatalog(context.Background())
	assert.Error(t, err)
}

// =============================================================================
// FALLBACK
// =============================================================================

func TestFallback_RemoteSuccessSkipsFallback(t *testing.T) {
	primary := &countingSource{items: []Product{product(1, "A", "1")}}
	fallback := &countingSource{items: []Product{product(2, "B", "2")}}
	src := &FallbackSource{Primary: primary, Fallback: fallback}

	items, err := src.FetchCatalog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1}, ids(items))
	assert.EqualValues(t, 0, fallback.calls.Load())
}

func TestFallback_ConsultedExactlyOnce(t *testing.T) {
	want := []Product{product(2, "B", "2"), product(5, "E", "5")}
	primary := &countingSource{err: errors.New("network down")}
	fallback := &countingSource{items: want}
	src := &FallbackSource{Primary: primary, Fallback: fallback}

	items, err := src.FetchCatalog(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, primary.calls.Load())
	assert.EqualValues(t, 1, fallback.calls.Load())
	if diff := cmp.Diff(ids(want), ids(items)); diff != "" {
		t.Errorf("fallback contents changed (-want +got):\n%s", diff)
	}
}

func TestFallback_BothFail(t *testing.T) {
	remoteErr := errors.New("network down")
	fileErr := errors.New("no file")
	src := &FallbackSource{
		Primary:  &countingSource{err: remoteErr},
		Fallback: &countingSource{err: fileErr},
	}

	_, err := src.FetchCatalog(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCatalogUnavailable))
	assert.True(t, errors.Is(err, remoteErr))
	assert.True(t, errors.Is(err, fileErr))

	_, _, err = src.FetchOne(context.Background(), 1)
	assert.True(t, errors.Is(err, ErrCatalogUnavailable))
}

func TestFallback_FetchOneSearchesFallback(t *testing.T) {
	src := &FallbackSource{
		Primary:  &countingSource{err: errors.New("offline")},
		Fallback: &countingSource{items: []Product{product(2, "B", "2"), product(9, "I", "9")}},
	}

	p, ok, err := src.FetchOne(context.Background(), 9)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "I", p.Title)

	_, ok, err = src.FetchOne(context.Background(), 404)
	require.NoError(t, err)
	assert.False(t, ok, "absent id is not an error")
}

func TestFallback_HTTPDownUsesFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	src := &FallbackSource{Primary: NewHTTPSource(srv.URL, time.Second), Fallback: &FileSource{}}
	items, err := src.FetchCatalog(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, items)
}

// =============================================================================
// SORT
// =============================================================================

func TestSort_Price(t *testing.T) {
	items := []Product{
		product(1, "X", "10"),
		product(2, "Y", "5"),
		product(3, "Z", "10"),
		product(4, "W", "1.50"),
	}

	assert.Equal(t, []int{4, 2, 1, 3}, ids(Sort(items, SortPriceAsc, language.English)))
	// Ties keep input order in descending mode too.
	assert.Equal(t, []int{1, 3, 2, 4}, ids(Sort(items, SortPriceDesc, language.English)))
	assert.Equal(t, []int{1, 2, 3, 4}, ids(items), "input must not be reordered")
}

func TestSort_Title(t *testing.T) {
	items := []Product{
		product(1, "banana", "1"),
		product(2, "Apple", "1"),
		product(3, "cherry", "1"),
		product(4, "apple", "2"),
	}

	asc := Sort(items, SortTitleAsc, language.English)
	assert.Equal(t, []int{3}, ids(asc[3:]))
	assert.Equal(t, 1, asc[2].ID)

	desc := Sort(items, SortTitleDesc, language.English)
	assert.Equal(t, []int{3, 1}, ids(desc[:2]))
}

func TestSort_TitleLocale(t *testing.T) {
	items := []Product{product(1, "Zebra", "1"), product(2, "Äpple", "1")}

	assert.Equal(t, []int{2, 1}, ids(Sort(items, SortTitleAsc, language.English)))
	assert.Equal(t, []int{1, 2}, ids(Sort(items, SortTitleAsc, language.Swedish)))
}

func randomCatalog(r *rand.Rand, n int) []Product {
	words := []string{"apple", "Banana", "cherry", "Äpple", "zebra", "apple"}
	items := make([]Product, n)
	for i := range items {
		title := words[r.Intn(len(words))] + " " + words[r.Intn(len(words))]
		items[i] = product(i+1, title, fmt.Sprintf("%d.%02d", r.Intn(20), r.Intn(100)))
	}
	return items
}

func TestSort_Idempotent(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for round := 0; round < 20; round++ {
		items := randomCatalog(r, 30)
		for _, mode := range SortModes() {
			once := Sort(items, mode, language.English)
			twice := Sort(once, mode, language.English)
			if diff := cmp.Diff(ids(once), ids(twice)); diff != "" {
				t.Fatalf("round %d, %s: resorting changed order (-once +twice):\n%s", round, mode, diff)
			}
		}
	}
}

func TestSort_PriceDescIsReverseWithoutTies(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	prices := r.Perm(30)
	items := make([]Product, len(prices))
	for i, cents := range prices {
		items[i] = product(i+1, "item", fmt.Sprintf("%d.%02d", cents/100, cents%100+1))
	}

	asc := ids(Sort(items, SortPriceAsc, language.English))
	slices.Reverse(asc)
	assert.Equal(t, asc, ids(Sort(items, SortPriceDesc, language.English)))
}

func TestSort_UnknownModeKeepsOrder(t *testing.T) {
	items := []Product{product(3, "C", "3"), product(1, "A", "1"), product(2, "B", "2")}

	got := Sort(items, SortMode("popularity"), language.English)
	assert.Equal(t, []int{3, 1, 2}, ids(got))

	got[0].Title = "mutated"
	assert.Equal(t, "C", items[0].Title, "result must be a copy")
}

func TestParseSortMode(t *testing.T) {
	m, err := ParseSortMode(" Price-Desc ")
	require.NoError(t, err)
	assert.Equal(t, SortPriceDesc, m)

	m, err = ParseSortMode("")
	require.NoError(t, err)
	assert.Equal(t, SortDefault, m)

	_, err = ParseSortMode("newest")
	assert.Error(t, err)

	assert.Len(t, SortModes(), 4)
	assert.Equal(t, "Title: Z to A", SortTitleDesc.Label())
}

// =============================================================================
// SEARCH
// =============================================================================

func TestSearch(t *testing.T) {
	var items []Product
	for i := 1; i <= 8; i++ {
		items = append(items, product(i, fmt.Sprintf("Cotton Shirt %d", i), "1"))
	}
	items = append(items, product(100, "Leather Jacket", "1"))

	assert.Len(t, Search(items, "shirt", 0), DefaultSuggestionLimit)
	assert.Equal(t, []int{100}, ids(Search(items, "  JACKET ", 0)))
	assert.Equal(t, []int{1, 2}, ids(Search(items, "cotton", 2)))
	assert.Empty(t, Search(items, "   ", 0))
	assert.Empty(t, Search(items, "socks", 0))
}

func TestProductJSONPriceIsNumber(t *testing.T) {
	data, err := json.Marshal(product(1, "A", "22.30"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"price":22.3`)
}
