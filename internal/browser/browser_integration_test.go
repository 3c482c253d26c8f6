//go:build integration

package browser_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"storefront/internal/browser"
)

func TestPrinter_PDF_Integration(t *testing.T) {
	session := browser.NewSession(browser.DefaultConfig())
	defer session.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	data, err := browser.NewPrinter(session).PDF(ctx, "<html><body><h2>Invoice</h2></body></html>")
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("%PDF")), "expected a PDF header")
}

func TestSession_OutlivesCallContext_Integration(t *testing.T) {
	session := browser.NewSession(browser.DefaultConfig())
	defer session.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	first, err := session.Start(ctx)
	require.NoError(t, err)
	cancel()

	second, err := session.Start(context.Background())
	require.NoError(t, err)
	require.Same(t, first, second, "cached browser survives the first call's context")
}

func TestImporter_ReadLocalStorage_Integration(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `<html><body><script>
			localStorage.setItem('mycart_v1', '[{"id":1,"title":"A","price":1,"image":"","qty":2}]');
		</script></body></html>`)
	}))
	defer ts.Close()

	session := browser.NewSession(browser.DefaultConfig())
	defer session.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	got, err := browser.NewImporter(session).ReadLocalStorage(ctx, ts.URL, []string{"mycart_v1", "users_v1"})
	require.NoError(t, err)
	require.Contains(t, got, "mycart_v1")
	require.NotContains(t, got, "users_v1")
}
