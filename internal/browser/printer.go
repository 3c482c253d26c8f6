package browser

import (
	"context"
	"io"

	"github.com/go-faster/errors"
	"github.com/go-rod/rod/lib/proto"

	"storefront/internal/logging"
)

// Printer renders HTML documents to PDF.
type Printer struct {
	session *Session
}

// NewPrinter creates a printer on session.
func NewPrinter(session *Session) *Printer {
	return &Printer{session: session}
}

// PDF loads html into a blank page and prints it with backgrounds.
func (p *Printer) PDF(ctx context.Context, html string) ([]byte, error) {
	timer := logging.StartTimer(logging.CategoryBrowser, "PDF")
	defer timer.Stop()

	ctx, cancel := context.WithTimeout(ctx, p.session.timeout())
	defer cancel()

	b, err := p.session.Start(ctx)
	if err != nil {
		return nil, err
	}

	page, err := b.Context(ctx).Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, errors.Wrap(err, "open page")
	}
	defer page.Close()

	if err := page.SetDocumentContent(html); err != nil {
		return nil, errors.Wrap(err, "load invoice html")
	}
	if err := page.WaitLoad(); err != nil {
		return nil, errors.Wrap(err, "wait for invoice load")
	}

	stream, err := page.PDF(&proto.PagePrintToPDF{PrintBackground: true})
	if err != nil {
		return nil, errors.Wrap(err, "print to pdf")
	}
	defer stream.Close()

	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, errors.Wrap(err, "read pdf stream")
	}
	logging.Browser("Printed PDF (%d bytes)", len(data))
	return data, nil
}
