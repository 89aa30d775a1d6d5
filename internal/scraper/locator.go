package scraper

import (
	"stanfordwho-parser/internal/dom"
	"stanfordwho-parser/internal/observability"
)

// CardSet: карточки текущей страницы и селектор, который их дал.
type CardSet struct {
	Selector string
	Cards    []dom.Element
}

// CardLocator выбирает селектор карточек заново на каждой странице.
type CardLocator struct {
	candidates []string
	logger     *observability.Logger
}

func NewCardLocator(candidates []string, logger *observability.Logger) *CardLocator {
	return &CardLocator{candidates: candidates, logger: logger}
}

// LocateCards пробует всех кандидатов и оставляет набор со строго большим
// числом совпадений; при равенстве выигрывает объявленный раньше. Пустой
// результат не ошибка: вызывающий повторит попытку. Ошибка возвращается
// только для dom.ErrStale.
func (l *CardLocator) LocateCards(page dom.Scope) (CardSet, error) {
	var best CardSet

	for _, sel := range l.candidates {
		els, err := page.FindAll(sel)
		if err != nil {
			if dom.IsStale(err) {
				return CardSet{}, err
			}
			l.logger.Debug("Card selector failed", "selector", sel, "error", err.Error())
			continue
		}
		if len(els) > len(best.Cards) {
			best = CardSet{Selector: sel, Cards: els}
		}
	}

	return best, nil
}
