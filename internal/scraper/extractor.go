package scraper

import (
	"context"
	"strings"

	"stanfordwho-parser/internal/dom"
	"stanfordwho-parser/internal/normalize"
	"stanfordwho-parser/internal/observability"
)

// RecordExtractor разбирает одну карточку в PersonRecord.
type RecordExtractor struct {
	selectors   *Selectors
	roleMarkers []string
	norm        *normalize.Normalizer
	emails      *EmailResolver
	logger      *observability.Logger

	scopeProbes []probe
	nameProbes  []probe
}

func NewRecordExtractor(
	selectors *Selectors,
	opts Options,
	norm *normalize.Normalizer,
	emails *EmailResolver,
	logger *observability.Logger,
) *RecordExtractor {
	e := &RecordExtractor{
		selectors:   selectors,
		roleMarkers: opts.RoleMarkers,
		norm:        norm,
		emails:      emails,
		logger:      logger,
	}
	e.scopeProbes = probesFor(selectors.ScopeCandidates, present)
	e.nameProbes = probesFor(selectors.NameCandidates, e.cleanText)
	return e
}

func (e *RecordExtractor) cleanText(el dom.Element) (string, bool) {
	text := e.norm.Clean(dom.TextOf(el))
	return text, text != ""
}

// ExtractRecord возвращает false, если в карточке нет ни одной строки текста
// (филлер, реклама, пустой контейнер). Ошибка возвращается только когда
// карточка отсоединилась от документа (dom.ErrStale): такую карточку
// надо искать заново, а не пропускать.
func (e *RecordExtractor) ExtractRecord(ctx context.Context, page dom.Page, card dom.Element) (*PersonRecord, bool, error) {
	scope := card
	if hit, ok := firstMatch(card, e.scopeProbes); ok {
		scope = hit.el
	}

	text, err := scope.Text()
	if err != nil {
		if dom.IsStale(err) {
			return nil, false, err
		}
		e.logger.Debug("Card text unreadable", "error", err.Error())
		text = ""
	}

	lines := e.norm.Lines(text)
	if len(lines) == 0 {
		return nil, false, nil
	}

	name := lines[0]
	var nameEl dom.Element
	if hit, ok := firstMatch(scope, e.nameProbes); ok {
		name = hit.value
		nameEl = hit.el
	}

	rest := make([]string, 0, len(lines))
	for _, ln := range lines {
		if ln != name {
			rest = append(rest, ln)
		}
	}

	department, affiliation := e.placement(scope, rest)
	affiliation = e.refineAffiliation(rest, affiliation)

	return &PersonRecord{
		Name:        name,
		Email:       e.emails.ResolveEmail(ctx, page, scope, lines, nameEl),
		Affiliation: affiliation,
		Department:  department,
	}, true, nil
}

// placement: структурное описание, если есть хоть одна строка, иначе
// позиционно по строкам после имени.
func (e *RecordExtractor) placement(scope dom.Element, rest []string) (department, affiliation string) {
	if desc, ok := dom.FindFirst(scope, e.selectors.Description); ok {
		descLines := e.norm.Lines(dom.TextOf(desc))
		if len(descLines) > 0 {
			department = descLines[0]
			if len(descLines) > 1 {
				affiliation = descLines[1]
			}
			return department, affiliation
		}
	}

	if len(rest) > 0 {
		department = rest[0]
	}
	if len(rest) > 1 {
		affiliation = rest[1]
	}
	return department, affiliation
}

// refineAffiliation смотрит вторую и третью строки после имени (первая:
// подразделение) и берёт ту, что похожа на роль.
func (e *RecordExtractor) refineAffiliation(rest []string, guess string) string {
	end := len(rest)
	if end > 3 {
		end = 3
	}
	for i := 1; i < end; i++ {
		if e.looksLikeRole(rest[i]) {
			return rest[i]
		}
	}
	return guess
}

func (e *RecordExtractor) looksLikeRole(line string) bool {
	if strings.Contains(line, " - ") {
		return true
	}
	for _, marker := range e.roleMarkers {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}
