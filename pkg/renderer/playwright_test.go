package renderer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/require"
)

// stubPage implements the parts of playwright.Page used for printing. PDF blocks until the
// page is closed when hang is set.
type stubPage struct {
	playwright.Page

	pdf  []byte
	hang bool

	once   sync.Once
	closed chan struct{}
	mu     sync.Mutex
	html   string
	closes int
}

func newStubPage(pdf []byte, hang bool) *stubPage {
	return &stubPage{pdf: pdf, hang: hang, closed: make(chan struct{})}
}

func (p *stubPage) SetContent(html string, _ ...playwright.PageSetContentOptions) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.html = html
	return nil
}

func (p *stubPage) PDF(_ ...playwright.PagePdfOptions) ([]byte, error) {
	if p.hang {
		<-p.closed
		return nil, errors.New("target page, context or browser has been closed")
	}
	return p.pdf, nil
}

func (p *stubPage) Close(_ ...playwright.PageCloseOptions) error {
	p.mu.Lock()
	p.closes++
	p.mu.Unlock()
	p.once.Do(func() { close(p.closed) })
	return nil
}

func (p *stubPage) closeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closes
}

func TestPrintWithinReturnsDocumentAndClosesPage(t *testing.T) {
	page := newStubPage([]byte("%PDF-1.7\n%fake report\n"), false)

	pdf, err := printWithin(context.Background(), page, "<html></html>", Budget{Timeout: time.Second, MaxBytes: 1024})
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.7\n%fake report\n", string(pdf))
	require.Equal(t, "<html></html>", page.html)
	require.Equal(t, 1, page.closeCount())
}

func TestPrintWithinClosesPageWhenBudgetExpires(t *testing.T) {
	page := newStubPage(nil, true)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := printWithin(ctx, page, "<html></html>", Budget{Timeout: 20 * time.Millisecond})
	require.ErrorIs(t, err, ErrTimeout)

	select {
	case <-page.closed:
	case <-time.After(time.Second):
		t.Fatal("page left open after the render budget expired")
	}
	require.Equal(t, 1, page.closeCount())
}

func TestPrintWithinCancelledCaller(t *testing.T) {
	page := newStubPage(nil, true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := printWithin(ctx, page, "<html></html>", Budget{})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, page.closeCount())
}

func TestPrintWithinEnforcesSizeAndType(t *testing.T) {
	_, err := printWithin(context.Background(), newStubPage([]byte("%PDF-1.7\n"+string(make([]byte, 64))), false), "", Budget{MaxBytes: 16})
	require.ErrorIs(t, err, ErrTooLarge)

	_, err = printWithin(context.Background(), newStubPage([]byte("<html>not a pdf</html>"), false), "", Budget{})
	require.ErrorIs(t, err, ErrInvalidOutput)
}
