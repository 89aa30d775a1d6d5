// Package rodpage implements dom.Page on top of a real Chrome driven by go-rod.
package rodpage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"stanfordwho-parser/internal/dom"
)

type Options struct {
	ChromePath      string
	Headless        bool
	PageTimeout     time.Duration // лимит на одну операцию с элементом
	WaitLoadTimeout time.Duration // ожидание загрузки после навигации
}

// Browser владеет процессом Chrome.
type Browser struct {
	ctx     context.Context
	browser *rod.Browser
	opts    Options
}

// Launch запускает Chrome (видимый по умолчанию: нужен ручной логин).
func Launch(ctx context.Context, opts Options) (*Browser, error) {
	l := launcher.New().Headless(opts.Headless)
	if opts.ChromePath != "" {
		l = l.Bin(opts.ChromePath)
	}
	if !opts.Headless {
		l = l.Set("start-maximized")
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch chrome: %w", err)
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to chrome: %w", err)
	}

	return &Browser{ctx: ctx, browser: b, opts: opts}, nil
}

// OpenPage открывает первую вкладку сессии.
func (b *Browser) OpenPage(url string) (*Page, error) {
	return b.newPage(url)
}

func (b *Browser) Close() error {
	return b.browser.Close()
}

func (b *Browser) newPage(url string) (*Page, error) {
	rp, err := b.browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, fmt.Errorf("failed to open page %s: %w", url, mapErr(err))
	}
	p := &Page{browser: b, page: rp.Context(b.ctx)}
	p.waitLoad()
	return p, nil
}

// mapErr переводит ошибки "узел пропал" в dom.ErrStale.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var notFound *rod.ObjectNotFoundError
	if errors.As(err, &notFound) || isDetached(err.Error()) {
		return fmt.Errorf("%w: %v", dom.ErrStale, err)
	}
	return err
}

var detachedMarkers = []string{
	"Could not find node",
	"Cannot find context",
	"No node with given id",
	"Node is detached",
	"Cannot find object",
	"Execution context was destroyed",
}

func isDetached(msg string) bool {
	for _, m := range detachedMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
