package renderer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/playwright-community/playwright-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	renderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "reports",
		Subsystem: "renderer",
		Name:      "render_duration_seconds",
		Help:      "Duration of HTML to PDF conversions",
		Buckets:   prometheus.DefBuckets,
	}, []string{"outcome"})

	renderBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "reports",
		Subsystem: "renderer",
		Name:      "document_bytes",
		Help:      "Size of rendered PDF documents",
		Buckets:   prometheus.ExponentialBuckets(16*1024, 4, 8),
	})
)

var _ Renderer = (*PlaywrightRenderer)(nil)

// Config groups the browser settings used for PDF generation.
type Config struct {
	BrowserPath     string
	InstallBrowsers bool
	Logger          zerolog.Logger
}

// PlaywrightRenderer prints HTML pages to PDF with a headless Chromium.
type PlaywrightRenderer struct {
	cfg    Config
	tracer trace.Tracer
	logger zerolog.Logger

	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
}

// NewPlaywrightRenderer constructs a renderer. The browser is started on first use.
func NewPlaywrightRenderer(cfg Config) *PlaywrightRenderer {
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	return &PlaywrightRenderer{
		cfg:    cfg,
		tracer: otel.Tracer("github.com/noah-isme/activity-report-api/pkg/renderer"),
		logger: logger.With().Str("component", "pdf_renderer").Logger(),
	}
}

// Render converts the table into an A4 PDF within the given budget.
func (r *PlaywrightRenderer) Render(parent context.Context, table Table, budget Budget) ([]byte, error) {
	ctx, span := r.tracer.Start(parent, "renderer.playwright.render", trace.WithAttributes(
		attribute.Int("report.rows", len(table.Rows)),
	))
	defer span.End()

	if budget.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, budget.Timeout)
		defer cancel()
	}

	start := time.Now()
	pdf, err := r.render(ctx, table, budget)
	outcome := "success"
	switch {
	case errors.Is(err, ErrTimeout):
		outcome = "timeout"
	case err != nil:
		outcome = "error"
	}
	renderDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.logger.Warn().Err(err).Str("outcome", outcome).Msg("pdf rendering failed")
		return nil, err
	}

	renderBytes.Observe(float64(len(pdf)))
	span.SetAttributes(attribute.Int("report.bytes", len(pdf)))
	return pdf, nil
}

func (r *PlaywrightRenderer) render(ctx context.Context, table Table, budget Budget) ([]byte, error) {
	html, err := HTML(table)
	if err != nil {
		return nil, err
	}

	browser, err := r.ensureBrowser()
	if err != nil {
		return nil, err
	}

	page, err := browser.NewPage()
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}

	return printWithin(ctx, page, string(html), budget)
}

// printWithin prints html to PDF on page. The page is always closed; when ctx ends first it is
// closed immediately, which aborts an in-flight SetContent or PDF call inside Chromium.
func printWithin(ctx context.Context, page playwright.Page, html string, budget Budget) ([]byte, error) {
	closePage := sync.OnceValue(func() error { return page.Close() })
	defer func() { _ = closePage() }()

	type result struct {
		pdf []byte
		err error
	}
	done := make(chan result, 1)

	go func() {
		pdf, err := printPage(page, html, budget.Timeout)
		done <- result{pdf: pdf, err: err}
	}()

	var out result
	select {
	case <-ctx.Done():
		_ = closePage()
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, ctx.Err()
	case out = <-done:
	}

	if out.err != nil {
		if errors.Is(out.err, playwright.ErrTimeout) {
			return nil, ErrTimeout
		}
		return nil, out.err
	}

	if budget.MaxBytes > 0 && int64(len(out.pdf)) > budget.MaxBytes {
		return nil, ErrTooLarge
	}
	if !mimetype.Detect(out.pdf).Is("application/pdf") {
		return nil, ErrInvalidOutput
	}

	return out.pdf, nil
}

func printPage(page playwright.Page, html string, timeout time.Duration) ([]byte, error) {
	contentOpts := playwright.PageSetContentOptions{WaitUntil: playwright.WaitUntilStateLoad}
	if timeout > 0 {
		contentOpts.Timeout = playwright.Float(float64(timeout.Milliseconds()))
	}
	if err := page.SetContent(html, contentOpts); err != nil {
		return nil, fmt.Errorf("load report html: %w", err)
	}

	pdf, err := page.PDF(playwright.PagePdfOptions{
		Format:          playwright.String("A4"),
		PrintBackground: playwright.Bool(true),
		Margin: &playwright.Margin{
			Top:    playwright.String("20px"),
			Right:  playwright.String("20px"),
			Bottom: playwright.String("20px"),
			Left:   playwright.String("20px"),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("print pdf: %w", err)
	}
	return pdf, nil
}

func (r *PlaywrightRenderer) ensureBrowser() (playwright.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil && r.browser.IsConnected() {
		return r.browser, nil
	}

	if r.pw == nil {
		if r.cfg.InstallBrowsers {
			if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
				return nil, fmt.Errorf("install chromium: %w", err)
			}
		}
		pw, err := playwright.Run(&playwright.RunOptions{SkipInstallBrowsers: true})
		if err != nil {
			return nil, fmt.Errorf("start playwright: %w", err)
		}
		r.pw = pw
	}

	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
		Args:     []string{"--no-sandbox", "--disable-setuid-sandbox"},
	}
	if r.cfg.BrowserPath != "" {
		opts.ExecutablePath = playwright.String(r.cfg.BrowserPath)
	}

	browser, err := r.pw.Chromium.Launch(opts)
	if err != nil {
		return nil, fmt.Errorf("launch chromium: %w", err)
	}
	r.browser = browser
	r.logger.Info().Msg("headless chromium started")
	return browser, nil
}

// Close releases the browser and the playwright driver.
func (r *PlaywrightRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	if r.browser != nil {
		if err := r.browser.Close(); err != nil {
			errs = append(errs, err)
		}
		r.browser = nil
	}
	if r.pw != nil {
		if err := r.pw.Stop(); err != nil {
			errs = append(errs, err)
		}
		r.pw = nil
	}
	return errors.Join(errs...)
}
