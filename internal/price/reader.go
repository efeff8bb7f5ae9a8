// Package price reads the current discounted unit price from a product page.
package price

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"branikbot/internal/config"
)

var ErrPriceNotFound = errors.New("lowPrice not found on page")

// lowPriceSelector matches the schema.org offer markup the page carries,
// e.g. <span itemprop="lowPrice" content="39.90">.
const lowPriceSelector = `[itemprop="lowPrice"]`

type Reader struct {
	url          string
	defaultPrice float64
	httpClient   *http.Client
	logger       *zap.Logger
}

func NewReader(cfg config.Config, logger *zap.Logger) *Reader {
	return &Reader{
		url:          cfg.PriceURL,
		defaultPrice: cfg.PriceDefault,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		logger:       logger,
	}
}

// Load fetches the page and returns the lowest offered price.
func (r *Reader) Load(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("price page status %d", resp.StatusCode)
	}
	return ParseLowPrice(resp.Body)
}

// LoadOrDefault is Load falling back to the configured default price.
func (r *Reader) LoadOrDefault(ctx context.Context) float64 {
	p, err := r.Load(ctx)
	if err != nil {
		r.logger.Warn("using default price", zap.Error(err), zap.Float64("price", r.defaultPrice))
		return r.defaultPrice
	}
	r.logger.Info("price updated", zap.Float64("price", p))
	return p
}

// ParseLowPrice reads the content attribute of the first lowPrice element.
func ParseLowPrice(page io.Reader) (float64, error) {
	doc, err := goquery.NewDocumentFromReader(page)
	if err != nil {
		return 0, err
	}

	content, ok := doc.Find(lowPriceSelector).First().Attr("content")
	if !ok {
		return 0, ErrPriceNotFound
	}
	return parseAmount(content)
}

func parseAmount(raw string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", raw, err)
	}
	if !d.IsPositive() {
		return 0, fmt.Errorf("non-positive price %q", raw)
	}
	f, _ := d.Float64()
	return f, nil
}
