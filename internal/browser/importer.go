package browser

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"storefront/internal/logging"
)

// readStorageJS returns the requested keys that exist, as a JSON object string.
const readStorageJS = `(keys) => {
	const out = {};
	for (const k of keys) {
		const v = window.localStorage.getItem(k);
		if (v !== null) out[k] = v;
	}
	return JSON.stringify(out);
}`

// Importer reads another storefront's localStorage.
type Importer struct {
	session *Session
}

// NewImporter creates an importer on session.
func NewImporter(session *Session) *Importer {
	return &Importer{session: session}
}

// ReadLocalStorage opens url and returns the raw values stored under keys.
// Keys that are not set are absent from the result.
func (i *Importer) ReadLocalStorage(ctx context.Context, url string, keys []string) (map[string]string, error) {
	timer := logging.StartTimer(logging.CategoryBrowser, "ReadLocalStorage")
	defer timer.Stop()

	ctx, cancel := context.WithTimeout(ctx, i.session.timeout())
	defer cancel()

	b, err := i.session.Start(ctx)
	if err != nil {
		return nil, err
	}

	page, err := b.Context(ctx).Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", url)
	}
	defer page.Close()

	if err := page.WaitLoad(); err != nil {
		return nil, errors.Wrapf(err, "wait for %s", url)
	}

	res, err := page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:      readStorageJS,
		JSArgs:  []interface{}{keys},
		ByValue: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "read localStorage")
	}
	return decodeStorage(res.Value.Str())
}

func decodeStorage(raw string) (map[string]string, error) {
	out := map[string]string{}
	if raw == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, errors.Wrap(err, "decode localStorage snapshot")
	}
	logging.BrowserDebug("Read %d localStorage keys", len(out))
	return out, nil
}
