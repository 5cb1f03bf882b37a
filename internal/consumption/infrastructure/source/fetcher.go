// Package source downloads the published workbook from the publisher page.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html"
)

// DefaultPageURL is the publisher page listing the monthly consumption workbook.
const DefaultPageURL = "https://www.epe.gov.br/pt/publicacoes-dados-abertos/publicacoes/consumo-de-energia-eletrica"

// ErrWorkbookLinkNotFound is returned when the page has no workbook link.
var ErrWorkbookLinkNotFound = errors.New("source: workbook link not found")

// Fetcher locates and downloads the workbook.
type Fetcher struct {
	client  *resty.Client
	pageURL string
	baseURL string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithBaseURL sets the base used to resolve relative links. Defaults to the page URL.
func WithBaseURL(baseURL string) Option {
	return func(f *Fetcher) {
		if baseURL != "" {
			f.baseURL = baseURL
		}
	}
}

// WithTimeout overrides the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) {
		if timeout > 0 {
			f.client.SetTimeout(timeout)
		}
	}
}

// NewFetcher constructs a Fetcher for pageURL.
func NewFetcher(pageURL string, opts ...Option) (*Fetcher, error) {
	if pageURL == "" {
		return nil, errors.New("source: empty page url")
	}
	f := &Fetcher{
		client:  resty.New().SetTimeout(30 * time.Second),
		pageURL: pageURL,
		baseURL: pageURL,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// WorkbookURL fetches the page and returns the absolute URL of the first workbook link.
func (f *Fetcher) WorkbookURL(ctx context.Context) (string, error) {
	body, err := f.get(ctx, f.pageURL)
	if err != nil {
		return "", err
	}
	href, ok := FindWorkbookLink(bytes.NewReader(body))
	if !ok {
		return "", ErrWorkbookLinkNotFound
	}
	return resolve(f.baseURL, href)
}

// Download returns the workbook URL and its content.
func (f *Fetcher) Download(ctx context.Context) (string, []byte, error) {
	link, err := f.WorkbookURL(ctx)
	if err != nil {
		return "", nil, err
	}
	data, err := f.get(ctx, link)
	if err != nil {
		return link, nil, err
	}
	return link, data, nil
}

func (f *Fetcher) get(ctx context.Context, target string) ([]byte, error) {
	resp, err := f.client.R().SetContext(ctx).Get(target)
	if err != nil {
		return nil, fmt.Errorf("source: get %s: %w", target, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("source: get %s: status %d", target, resp.StatusCode())
	}
	return resp.Body(), nil
}

// FindWorkbookLink returns the href of the first anchor pointing at a spreadsheet (.xls or .xlsx).
func FindWorkbookLink(r io.Reader) (string, bool) {
	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.ErrorToken:
			return "", false
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.Data != "a" {
				continue
			}
			for _, attr := range tok.Attr {
				if attr.Key == "href" && strings.Contains(strings.ToLower(attr.Val), ".xls") {
					return strings.TrimSpace(attr.Val), true
				}
			}
		}
	}
}

func resolve(base, href string) (string, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("source: invalid link %q: %w", href, err)
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("source: invalid base url %q: %w", base, err)
	}
	return baseURL.ResolveReference(ref).String(), nil
}
