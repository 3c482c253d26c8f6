package storefront

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"

	"storefront/internal/account"
	"storefront/internal/cart"
	"storefront/internal/kv"
	"storefront/internal/logging"
)

// StorageReader reads localStorage values from a browser storefront page.
type StorageReader interface {
	ReadLocalStorage(ctx context.Context, url string, keys []string) (map[string]string, error)
}

// ImportReport summarizes an import.
type ImportReport struct {
	CartLines   int
	Accounts    int
	SignedIn    bool
	SkippedKeys []string
}

// ImportBrowserState merges the cart, accounts and signed-in identity of the browser
// storefront at url into local storage. Unreadable keys are skipped and reported.
func (a *App) ImportBrowserState(ctx context.Context, r StorageReader, url string) (ImportReport, error) {
	values, err := r.ReadLocalStorage(ctx, url, []string{kv.KeyCart, kv.KeyUsers, kv.KeyCurrentUser})
	a.audit(logging.AuditImport, err, "url", url)
	if err != nil {
		return ImportReport{}, errors.Wrap(err, "read browser state")
	}

	var report ImportReport

	if raw, ok := values[kv.KeyCart]; ok {
		var lines []cart.Line
		if err := json.Unmarshal([]byte(raw), &lines); err != nil {
			report.SkippedKeys = append(report.SkippedKeys, kv.KeyCart)
		} else {
			if err := a.cart.Merge(lines); err != nil {
				return report, err
			}
			report.CartLines = len(lines)
		}
	}

	if raw, ok := values[kv.KeyUsers]; ok {
		var users []account.User
		if err := json.Unmarshal([]byte(raw), &users); err != nil {
			report.SkippedKeys = append(report.SkippedKeys, kv.KeyUsers)
		} else {
			n, err := a.accounts.Import(users)
			if err != nil {
				return report, err
			}
			report.Accounts = n
		}
	}

	if raw, ok := values[kv.KeyCurrentUser]; ok {
		var cur account.CurrentUser
		if err := json.Unmarshal([]byte(raw), &cur); err != nil {
			report.SkippedKeys = append(report.SkippedKeys, kv.KeyCurrentUser)
		} else {
			adopted, err := a.accounts.Adopt(cur)
			if err != nil {
				return report, err
			}
			report.SignedIn = adopted
		}
	}

	logging.Boot("Imported browser state from %s: %+v", url, report)
	return report, nil
}
