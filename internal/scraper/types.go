package scraper

import "time"

// PersonRecord: одна запись справочника. Пустые строки вместо отсутствующих
// полей, чтобы схема вывода не менялась.
type PersonRecord struct {
	Name        string
	Email       string
	Affiliation string
	Department  string
}

// Header: порядок колонок выходного CSV.
var Header = []string{"name", "email", "affiliation", "department"}

func (r PersonRecord) Row() []string {
	return []string{r.Name, r.Email, r.Affiliation, r.Department}
}

// Selectors: упорядоченные списки кандидатов, от самых точных к запасным.
type Selectors struct {
	CardCandidates  []string `yaml:"card_candidates"`
	ScopeCandidates []string `yaml:"scope_candidates"`
	NameCandidates  []string `yaml:"name_candidates"`
	Description     string   `yaml:"description"`
	MailtoLinks     string   `yaml:"mailto_links"`
	ProfileReady    []string `yaml:"profile_ready"`
	ProfileBody     string   `yaml:"profile_body"`
	ActivePage      []string `yaml:"active_page"`
	PageNumberLinks []string `yaml:"page_number_links"`
	NextControls    []string `yaml:"next_controls"`
}

// DefaultSelectors: шаблоны Oracle APEX, на которых работает справочник.
func DefaultSelectors() *Selectors {
	return &Selectors{
		CardCandidates: []string{
			".t-Card",
			".t-ContentCard",
			".t-ContentRow",
			".t-ContentRow-wrap",
			".t-ContentRow-content",
			".t-SearchResults-item",
			".t-Region .t-Card",
			"li.a-IRR-tableRow",
		},
		// Берём обёртку, где есть и content, и misc (там обычно email)
		ScopeCandidates: []string{".t-ContentRow-wrap", ".t-Card-body", ".t-Card"},
		NameCandidates: []string{
			"a.t-Card-title",
			".t-Card-title a",
			".t-ContentCard-title a",
			".t-ContentRow-content h3 a",
			".t-ContentRow-content h3",
			"h3 a",
			"h3",
			"a",
		},
		Description:  ".t-ContentRow-body .t-ContentRow-desc",
		MailtoLinks:  "a[href^='mailto:'], a[href^='MAILTO:']",
		ProfileReady: []string{"a[href^='mailto:']", ".t-Region, body"},
		ProfileBody:  "body",
		ActivePage: []string{
			"strong[aria-current='page']",
			".t-Report-paginationText strong",
			".t-Report-paginationLink.is-active",
			".t-Pagination-item.is-active",
			".t-Report-pagination b",
			".t-Report-pagination span.current",
			"table.a-IRR-pagination td span",
		},
		PageNumberLinks: []string{
			"a[class*='t-Report-paginationLink']",
			"[class*='t-Report-pagination'] a",
		},
		NextControls: []string{
			"a[aria-label='Next']",
			".t-Report-paginationLink--next",
			"a[title='Next']",
		},
	}
}

// Merge подменяет непустые списки из override.
func (s *Selectors) Merge(override *Selectors) *Selectors {
	if override == nil {
		return s
	}
	out := *s
	pickList(&out.CardCandidates, override.CardCandidates)
	pickList(&out.ScopeCandidates, override.ScopeCandidates)
	pickList(&out.NameCandidates, override.NameCandidates)
	pickList(&out.ProfileReady, override.ProfileReady)
	pickList(&out.ActivePage, override.ActivePage)
	pickList(&out.PageNumberLinks, override.PageNumberLinks)
	pickList(&out.NextControls, override.NextControls)
	pickString(&out.Description, override.Description)
	pickString(&out.MailtoLinks, override.MailtoLinks)
	pickString(&out.ProfileBody, override.ProfileBody)
	return &out
}

func pickList(dst *[]string, src []string) {
	if len(src) > 0 {
		*dst = append([]string(nil), src...)
	}
}

func pickString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

// Options: поведение ядра, передаётся явно при создании.
type Options struct {
	EmailDomain    string
	RoleMarkers    []string
	FollowProfile  bool
	ProfileTimeout time.Duration
	PollInterval   time.Duration
	PagePause      time.Duration
}

func DefaultOptions() Options {
	return Options{
		EmailDomain:    "@stanford.edu",
		RoleMarkers:    []string{"Student", "Faculty", "Staff"},
		ProfileTimeout: 20 * time.Second,
		PollInterval:   time.Second,
		PagePause:      time.Second,
	}
}
