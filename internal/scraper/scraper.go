package scraper

import (
	"context"

	"stanfordwho-parser/internal/dom"
	"stanfordwho-parser/internal/normalize"
	"stanfordwho-parser/internal/observability"
)

// Scraper собирает компоненты разбора одной страницы справочника.
type Scraper struct {
	locator   *CardLocator
	extractor *RecordExtractor
	emails    *EmailResolver
	paginator *Paginator
}

func NewScraper(selectors *Selectors, opts Options, norm *normalize.Normalizer, logger *observability.Logger) *Scraper {
	if selectors == nil {
		selectors = DefaultSelectors()
	}
	emails := NewEmailResolver(selectors, opts, norm, logger)
	return &Scraper{
		locator:   NewCardLocator(selectors.CardCandidates, logger),
		extractor: NewRecordExtractor(selectors, opts, norm, emails, logger),
		emails:    emails,
		paginator: NewPaginator(selectors, opts, logger),
	}
}

// WithSleeper подменяет паузы (тесты).
func (s *Scraper) WithSleeper(sleep Sleeper) *Scraper {
	s.emails.sleep = sleep
	s.paginator.sleep = sleep
	return s
}

func (s *Scraper) LocateCards(page dom.Scope) (CardSet, error) {
	return s.locator.LocateCards(page)
}

func (s *Scraper) ExtractRecord(ctx context.Context, page dom.Page, card dom.Element) (*PersonRecord, bool, error) {
	return s.extractor.ExtractRecord(ctx, page, card)
}

func (s *Scraper) AdvancePage(ctx context.Context, page dom.Page) bool {
	return s.paginator.AdvancePage(ctx, page)
}

func (s *Scraper) PaginationState(page dom.Scope) PaginationState {
	return s.paginator.State(page)
}
