package scraper

import (
	"context"
	"strings"
	"time"

	"stanfordwho-parser/internal/dom"
	"stanfordwho-parser/internal/normalize"
	"stanfordwho-parser/internal/observability"
)

// EmailResolver ищет адрес: mailto-ссылка, затем токен с доменом в тексте,
// затем (только если включено) страница профиля в отдельной вкладке.
type EmailResolver struct {
	selectors *Selectors
	opts      Options
	norm      *normalize.Normalizer
	logger    *observability.Logger
	sleep     Sleeper
}

func NewEmailResolver(selectors *Selectors, opts Options, norm *normalize.Normalizer, logger *observability.Logger) *EmailResolver {
	return &EmailResolver{
		selectors: selectors,
		opts:      opts,
		norm:      norm,
		logger:    logger,
		sleep:     Pause,
	}
}

// ResolveEmail никогда не возвращает ошибку: не нашли: пустая строка.
func (r *EmailResolver) ResolveEmail(ctx context.Context, page dom.Page, scope dom.Scope, lines []string, nameEl dom.Element) string {
	if email := r.fromMailto(scope); email != "" {
		return email
	}
	if email := r.fromText(lines); email != "" {
		return email
	}

	if !r.opts.FollowProfile || nameEl == nil || page == nil {
		return ""
	}
	target := normalize.ResolveURL(page.URL(), dom.AttrOf(nameEl, "href"))
	if target == "" {
		return ""
	}
	return r.fromProfile(ctx, page, target)
}

func (r *EmailResolver) fromMailto(scope dom.Scope) string {
	anchors, err := scope.FindAll(r.selectors.MailtoLinks)
	if err != nil {
		return ""
	}
	for _, a := range anchors {
		if email := normalize.MailtoAddress(dom.AttrOf(a, "href")); email != "" {
			return email
		}
	}
	return ""
}

func (r *EmailResolver) fromText(lines []string) string {
	domain := strings.ToLower(r.opts.EmailDomain)
	if domain == "" {
		domain = "@"
	}
	for _, ln := range lines {
		for _, token := range strings.Fields(ln) {
			if strings.Contains(strings.ToLower(token), domain) {
				return normalize.EmailToken(token)
			}
		}
	}
	return ""
}

// fromProfile открывает профиль во вкладке и всегда закрывает её и
// возвращает фокус исходной странице, чем бы ни кончился поиск.
func (r *EmailResolver) fromProfile(ctx context.Context, page dom.Page, target string) string {
	child, err := page.OpenInNewContext(target)
	if err != nil {
		r.logger.Debug("Profile page failed to open", "url", target, "error", err.Error())
		if err := page.Activate(); err != nil {
			r.logger.Warn("Failed to restore original tab", "error", err.Error())
		}
		return ""
	}
	defer func() {
		if err := child.CloseContext(); err != nil {
			r.logger.Warn("Failed to close profile tab", "url", target, "error", err.Error())
		}
		if err := page.Activate(); err != nil {
			r.logger.Warn("Failed to restore original tab", "error", err.Error())
		}
	}()

	if !r.waitForAny(ctx, child, r.selectors.ProfileReady, r.opts.ProfileTimeout) {
		r.logger.Debug("Profile page did not render in time", "url", target)
	}

	if email := r.fromMailto(child); email != "" {
		return email
	}
	body, ok := dom.FindFirst(child, r.selectors.ProfileBody)
	if !ok {
		return ""
	}
	return r.fromText(r.norm.Lines(dom.TextOf(body)))
}

// waitForAny опрашивает селекторы до первого совпадения или таймаута.
func (r *EmailResolver) waitForAny(ctx context.Context, scope dom.Scope, selectors []string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		for _, sel := range selectors {
			if _, ok := dom.FindFirst(scope, sel); ok {
				return true
			}
		}
		if !time.Now().Before(deadline) {
			return false
		}
		if err := r.sleep(ctx, r.opts.PollInterval); err != nil {
			return false
		}
	}
}
