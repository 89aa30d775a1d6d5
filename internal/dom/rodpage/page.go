package rodpage

import (
	"fmt"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"stanfordwho-parser/internal/dom"
)

type Page struct {
	browser *Browser
	page    *rod.Page
}

func (p *Page) URL() string {
	info, err := p.page.Info()
	if err != nil || info == nil {
		return ""
	}
	return info.URL
}

func (p *Page) Navigate(url string) error {
	if err := p.page.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, mapErr(err))
	}
	p.waitLoad()
	return nil
}

func (p *Page) FindAll(selector string) ([]dom.Element, error) {
	tp := p.page.Timeout(p.browser.opts.PageTimeout)
	defer tp.CancelTimeout()

	els, err := tp.Elements(selector)
	if err != nil {
		return nil, mapErr(err)
	}
	return p.wrap(els), nil
}

func (p *Page) OpenInNewContext(url string) (dom.Page, error) {
	return p.browser.newPage(url)
}

func (p *Page) CloseContext() error {
	return mapErr(p.page.Close())
}

func (p *Page) Activate() error {
	_, err := p.page.Activate()
	return mapErr(err)
}

// waitLoad ждёт load, но не дольше WaitLoadTimeout. Таймаут не ошибка:
// динамические страницы догружаются, это ловит опрос карточек.
func (p *Page) waitLoad() {
	if p.browser.opts.WaitLoadTimeout <= 0 {
		return
	}
	tp := p.page.Timeout(p.browser.opts.WaitLoadTimeout)
	defer tp.CancelTimeout()
	_ = tp.WaitLoad()
}

// Элементы, найденные через страницу с таймаутом, унаследовали бы её
// контекст, поэтому перепривязываем их к контексту сессии.
func (p *Page) wrap(els rod.Elements) []dom.Element {
	out := make([]dom.Element, 0, len(els))
	for _, el := range els {
		out = append(out, &Element{page: p, el: el.Context(p.browser.ctx)})
	}
	return out
}

type Element struct {
	page *Page
	el   *rod.Element
}

func (e *Element) timed() *rod.Element {
	return e.el.Timeout(e.page.browser.opts.PageTimeout)
}

func (e *Element) FindAll(selector string) ([]dom.Element, error) {
	te := e.timed()
	defer te.CancelTimeout()

	els, err := te.Elements(selector)
	if err != nil {
		return nil, mapErr(err)
	}
	return e.page.wrap(els), nil
}

func (e *Element) Text() (string, error) {
	te := e.timed()
	defer te.CancelTimeout()

	text, err := te.Text()
	if err != nil {
		return "", mapErr(err)
	}
	return text, nil
}

func (e *Element) Attribute(name string) (string, bool, error) {
	te := e.timed()
	defer te.CancelTimeout()

	v, err := te.Attribute(name)
	if err != nil {
		return "", false, mapErr(err)
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

func (e *Element) Interactable() (bool, error) {
	te := e.timed()
	defer te.CancelTimeout()

	visible, err := te.Visible()
	if err != nil {
		return false, mapErr(err)
	}
	if !visible {
		return false, nil
	}

	if disabled, err := te.Attribute("disabled"); err != nil {
		return false, mapErr(err)
	} else if disabled != nil {
		return false, nil
	}
	if aria, err := te.Attribute("aria-disabled"); err == nil && aria != nil && strings.EqualFold(*aria, "true") {
		return false, nil
	}
	return true, nil
}

func (e *Element) Click() error {
	te := e.timed()
	defer te.CancelTimeout()

	return mapErr(te.Click(proto.InputMouseButtonLeft, 1))
}
