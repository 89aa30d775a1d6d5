package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stanfordwho-parser/internal/checksum"
	"stanfordwho-parser/internal/config"
	"stanfordwho-parser/internal/dom"
	"stanfordwho-parser/internal/observability"
	"stanfordwho-parser/internal/scraper"
	"stanfordwho-parser/internal/storage"
)

const (
	StopNoNextPage = "no next page"
	StopMaxPages   = "max pages reached"
	StopCancelled  = "cancelled"
	StopSinkError  = "sink error"
)

// maxRediscover: сколько раз заново искать карточки страницы, если они
// устарели во время разбора.
const maxRediscover = 3

// SessionOptions: тайминги и лимиты цикла обхода.
type SessionOptions struct {
	WaitTimeout  time.Duration
	PollInterval time.Duration
	SettleDelay  time.Duration
	MaxPages     int
}

func SessionOptionsFromConfig(cfg *config.Config) SessionOptions {
	return SessionOptions{
		WaitTimeout:  cfg.GetWaitTimeout(),
		PollInterval: cfg.GetPollInterval(),
		SettleDelay:  cfg.GetSettleDelay(),
		MaxPages:     cfg.Scrape.MaxPages,
	}
}

// SessionStats: итог сессии.
type SessionStats struct {
	Pages         int
	Cards         int
	Records       int
	Skipped       int
	EmptyPages    int
	Duplicates    int
	StoppedReason string
}

// Session владеет вкладкой и приёмником на всё время обхода.
type Session struct {
	opts    SessionOptions
	logger  *observability.Logger
	scraper *scraper.Scraper
	sink    storage.RecordSink
	tracker *checksum.Tracker
	sleep   scraper.Sleeper
	now     func() time.Time
}

func NewSession(opts SessionOptions, s *scraper.Scraper, sink storage.RecordSink, logger *observability.Logger) *Session {
	return &Session{
		opts:    opts,
		logger:  logger,
		scraper: s,
		sink:    sink,
		tracker: checksum.NewTracker(),
		sleep:   scraper.Pause,
		now:     time.Now,
	}
}

// WithClock подменяет часы и паузы (тесты).
func (s *Session) WithClock(now func() time.Time, sleep scraper.Sleeper) *Session {
	s.now = now
	s.sleep = sleep
	return s
}

// Run обходит страницы, начиная с текущей, пока есть следующая. Ошибку
// возвращает только приёмник; приёмник закрывается всегда.
func (s *Session) Run(ctx context.Context, page dom.Page) (stats *SessionStats, err error) {
	stats = &SessionStats{}
	defer func() {
		stats.Duplicates = s.tracker.Duplicates()
		if closeErr := s.sink.Close(); closeErr != nil {
			s.logger.Error("Failed to close sink", "error", closeErr.Error())
			err = errors.Join(err, fmt.Errorf("failed to close sink: %w", closeErr))
		}
	}()

	s.logger.Info("Starting session",
		"url", page.URL(),
		"wait_timeout", s.opts.WaitTimeout.String(),
		"max_pages", s.opts.MaxPages,
	)

	for pageIndex := 1; ; pageIndex++ {
		if ctx.Err() != nil {
			stats.StoppedReason = StopCancelled
			break
		}

		log := s.logger.With("page", pageIndex)
		cards, extracted := s.collectPage(ctx, page, pageIndex, log)
		stats.Pages++
		stats.Cards += len(cards.Cards)
		stats.Skipped += extracted.skipped + extracted.stale
		if len(cards.Cards) == 0 {
			stats.EmptyPages++
		}

		written, err := s.persistPage(ctx, pageIndex, extracted.records, log)
		stats.Records += written
		if err != nil {
			stats.StoppedReason = StopSinkError
			return stats, err
		}

		log.Info("Page processed",
			"selector", cards.Selector,
			"found", len(cards.Cards),
			"records", written,
			"skipped", extracted.skipped,
			"stale", extracted.stale,
		)

		if s.opts.MaxPages > 0 && pageIndex >= s.opts.MaxPages {
			stats.StoppedReason = StopMaxPages
			break
		}
		if ctx.Err() != nil {
			stats.StoppedReason = StopCancelled
			break
		}

		if !s.scraper.AdvancePage(ctx, page) {
			stats.StoppedReason = StopNoNextPage
			break
		}
		if err := s.sleep(ctx, s.opts.SettleDelay); err != nil {
			stats.StoppedReason = StopCancelled
			break
		}
	}

	stats.Duplicates = s.tracker.Duplicates()
	s.logger.Info("Session completed",
		"pages", stats.Pages,
		"cards", stats.Cards,
		"records", stats.Records,
		"skipped", stats.Skipped,
		"empty_pages", stats.EmptyPages,
		"duplicates", stats.Duplicates,
		"reason", stats.StoppedReason,
	)

	return stats, nil
}

// discover опрашивает страницу, пока не появятся карточки или не выйдет
// время. Устаревшие элементы: повод повторить, а не упасть.
func (s *Session) discover(ctx context.Context, page dom.Page, pageIndex int) scraper.CardSet {
	deadline := s.now().Add(s.opts.WaitTimeout)
	attempts := 0

	for {
		attempts++
		cards, err := s.scraper.LocateCards(page)
		switch {
		case err != nil:
			s.logger.Debug("Cards went stale, retrying", "page", pageIndex, "attempt", attempts, "error", err.Error())
		case len(cards.Cards) > 0:
			// карточки могли найтись в момент перерисовки
			if _, err := cards.Cards[0].Text(); dom.IsStale(err) {
				s.logger.Debug("Cards detached right after discovery, retrying", "page", pageIndex, "attempt", attempts)
				break
			}
			return cards
		}

		if !s.now().Before(deadline) {
			break
		}
		if err := s.sleep(ctx, s.opts.PollInterval); err != nil {
			break
		}
	}

	s.logger.Warn("No cards found before timeout, continuing with empty page",
		"page", pageIndex,
		"attempts", attempts,
		"url", page.URL(),
	)
	return scraper.CardSet{}
}

type pageRecords struct {
	records []*scraper.PersonRecord
	skipped int
	stale   int
}

// collectPage находит карточки и разбирает их. Если карточки устарели
// посреди разбора, страница разбирается заново с поиска карточек; до
// приёмника доходит только результат целого прохода.
func (s *Session) collectPage(ctx context.Context, page dom.Page, pageIndex int, log *observability.Logger) (scraper.CardSet, pageRecords) {
	for attempt := 1; ; attempt++ {
		cards := s.discover(ctx, page, pageIndex)
		extracted := s.extractPage(ctx, page, cards, log)
		if extracted.stale == 0 {
			return cards, extracted
		}
		if attempt > maxRediscover || ctx.Err() != nil {
			log.Warn("Cards kept going stale, keeping partial page",
				"attempts", attempt,
				"stale", extracted.stale,
				"records", len(extracted.records),
			)
			return cards, extracted
		}
		log.Debug("Cards went stale during extraction, rediscovering", "attempt", attempt, "stale", extracted.stale)
	}
}

func (s *Session) extractPage(ctx context.Context, page dom.Page, cards scraper.CardSet, log *observability.Logger) pageRecords {
	var out pageRecords
	for i, card := range cards.Cards {
		rec, ok, err := s.scraper.ExtractRecord(ctx, page, card)
		switch {
		case err != nil:
			out.stale++
		case !ok:
			out.skipped++
			log.Warn("Card skipped: no text", "card", i+1)
		default:
			out.records = append(out.records, rec)
		}
	}
	return out
}

func (s *Session) persistPage(ctx context.Context, pageIndex int, records []*scraper.PersonRecord, log *observability.Logger) (written int, err error) {
	for _, rec := range records {
		if s.tracker.Seen(rec.Name, rec.Email, rec.Affiliation, rec.Department) {
			log.Warn("Duplicate record", "name", rec.Name, "email", rec.Email)
		}

		if err := s.sink.Write(ctx, pageIndex, rec); err != nil {
			return written, fmt.Errorf("failed to write record on page %d: %w", pageIndex, err)
		}
		written++
	}

	if err := s.sink.Flush(ctx); err != nil {
		return written, fmt.Errorf("failed to flush page %d: %w", pageIndex, err)
	}
	return written, nil
}
