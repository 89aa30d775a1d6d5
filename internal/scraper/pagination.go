package scraper

import (
	"context"
	"strconv"

	"stanfordwho-parser/internal/dom"
	"stanfordwho-parser/internal/normalize"
	"stanfordwho-parser/internal/observability"
)

// PaginationState пересчитывается по живой странице на каждой итерации.
type PaginationState struct {
	Current int
	Known   bool
}

// Paginator переходит на следующую страницу: сначала по номеру, потом через
// общую кнопку "Next".
type Paginator struct {
	selectors *Selectors
	opts      Options
	logger    *observability.Logger
	sleep     Sleeper
}

func NewPaginator(selectors *Selectors, opts Options, logger *observability.Logger) *Paginator {
	return &Paginator{selectors: selectors, opts: opts, logger: logger, sleep: Pause}
}

// State читает номер активной страницы. Используется первый селектор, нашедший
// хоть что-то; если его текст не число: номер неизвестен.
func (p *Paginator) State(page dom.Scope) PaginationState {
	for _, sel := range p.selectors.ActivePage {
		el, ok := dom.FindFirst(page, sel)
		if !ok {
			continue
		}
		text := normalize.Space(dom.TextOf(el))
		p.logger.Debug("Active page indicator found", "selector", sel, "text", text)
		if n, ok := parsePageNumber(text); ok {
			return PaginationState{Current: n, Known: true}
		}
		return PaginationState{}
	}
	return PaginationState{}
}

// AdvancePage возвращает false только если ни один способ не сработал:
// это единственное условие завершения сессии.
func (p *Paginator) AdvancePage(ctx context.Context, page dom.Page) bool {
	state := p.State(page)
	if state.Known && p.clickPageNumber(ctx, page, state.Current+1) {
		return true
	}
	if p.clickNext(ctx, page) {
		return true
	}
	p.logger.Info("No next page control found")
	return false
}

func (p *Paginator) clickPageNumber(ctx context.Context, page dom.Page, target int) bool {
	label := strconv.Itoa(target)
	for _, sel := range p.selectors.PageNumberLinks {
		links, err := page.FindAll(sel)
		if err != nil {
			continue
		}
		for _, link := range links {
			if normalize.Space(dom.TextOf(link)) != label {
				continue
			}
			if err := link.Click(); err != nil {
				p.logger.Warn("Numeric pagination click failed", "page", target, "error", err.Error())
				return false
			}
			p.logger.Info("Clicked numeric pagination link", "page", target)
			p.pause(ctx)
			return true
		}
	}
	p.logger.Debug("No link for next page number", "page", target)
	return false
}

func (p *Paginator) clickNext(ctx context.Context, page dom.Page) bool {
	for _, sel := range p.selectors.NextControls {
		controls, err := page.FindAll(sel)
		if err != nil {
			continue
		}
		for _, c := range controls {
			ok, err := c.Interactable()
			if err != nil || !ok {
				continue
			}
			if err := c.Click(); err != nil {
				continue
			}
			p.logger.Info("Clicked fallback Next control", "selector", sel)
			p.pause(ctx)
			return true
		}
	}
	return false
}

func parsePageNumber(text string) (int, bool) {
	if text == "" {
		return 0, false
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, false
	}
	return n, true
}

// pause ждёт после клика. Клик уже случился, поэтому отмена здесь не
// отменяет переход: Run увидит ctx.Err() на следующем шаге.
func (p *Paginator) pause(ctx context.Context) {
	if err := p.sleep(ctx, p.opts.PagePause); err != nil {
		p.logger.Debug("Page pause interrupted", "error", err.Error())
	}
}
