// Package static implements dom.Page over plain HTML documents with goquery.
// There is no JavaScript: clicking a link loads its target through the Loader.
package static

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"stanfordwho-parser/internal/dom"
)

// ErrNotNavigable is returned by Click on an element without a usable link target.
var ErrNotNavigable = errors.New("static: element has no link target")

// Loader returns the HTML of a document by URL.
type Loader interface {
	Load(ctx context.Context, url string) (string, error)
}

// MapLoader serves documents from memory, keyed by URL.
type MapLoader map[string]string

func (m MapLoader) Load(_ context.Context, url string) (string, error) {
	html, ok := m[url]
	if !ok {
		return "", fmt.Errorf("static: no document for %s", url)
	}
	return html, nil
}

type Page struct {
	ctx     context.Context
	loader  Loader
	url     string
	doc     *goquery.Document
	version int
	closed  bool
}

// Open loads url and returns a page positioned on it.
func Open(ctx context.Context, loader Loader, url string) (*Page, error) {
	p := &Page{ctx: ctx, loader: loader}
	if err := p.Navigate(url); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Page) URL() string {
	return p.url
}

func (p *Page) Navigate(url string) error {
	if p.closed {
		return errors.New("static: page is closed")
	}

	body, err := p.loader.Load(p.ctx, url)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", url, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to parse HTML: %w", err)
	}

	p.url = url
	p.doc = doc
	// старые элементы после навигации становятся stale
	p.version++
	return nil
}

func (p *Page) FindAll(selector string) ([]dom.Element, error) {
	if p.closed {
		return nil, errors.New("static: page is closed")
	}
	m, err := compile(selector)
	if err != nil {
		return nil, err
	}
	return p.wrap(p.doc.FindMatcher(m)), nil
}

func (p *Page) OpenInNewContext(url string) (dom.Page, error) {
	return Open(p.ctx, p.loader, url)
}

func (p *Page) CloseContext() error {
	p.closed = true
	return nil
}

func (p *Page) Activate() error {
	if p.closed {
		return errors.New("static: page is closed")
	}
	return nil
}

func (p *Page) wrap(sel *goquery.Selection) []dom.Element {
	els := make([]dom.Element, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		els = append(els, &Element{page: p, sel: s, version: p.version})
	})
	return els
}

func compile(selector string) (cascadia.Selector, error) {
	m, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	return m, nil
}
