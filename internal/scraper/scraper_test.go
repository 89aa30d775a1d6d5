package scraper

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stanfordwho-parser/internal/dom"
	"stanfordwho-parser/internal/dom/static"
	"stanfordwho-parser/internal/normalize"
	"stanfordwho-parser/internal/observability"
)

const listURL = "https://who.test/list"

func noSleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

func newTestScraper(opts Options) *Scraper {
	return NewScraper(nil, opts, normalize.NewNormalizer(normalize.DefaultOptions()), observability.NewNopLogger()).
		WithSleeper(noSleep)
}

func openHTML(t *testing.T, body string, extra static.MapLoader) *static.Page {
	t.Helper()
	loader := static.MapLoader{listURL: "<html><body>" + body + "</body></html>"}
	for k, v := range extra {
		loader[k] = v
	}
	p, err := static.Open(context.Background(), loader, listURL)
	require.NoError(t, err)
	return p
}

func firstEl(t *testing.T, s dom.Scope, sel string) dom.Element {
	t.Helper()
	el, ok := dom.FindFirst(s, sel)
	require.True(t, ok, sel)
	return el
}

func TestLocateCardsPicksGreatestCount(t *testing.T) {
	page := openHTML(t, `<i class="a"></i><i class="b"></i><i class="b"></i><i class="b"></i><i class="c"></i><i class="c"></i><i class="c"></i>`, nil)
	loc := NewCardLocator([]string{".a", ".b", ".c", ".missing"}, observability.NewNopLogger())

	set, err := loc.LocateCards(page)
	require.NoError(t, err)
	assert.Equal(t, ".b", set.Selector, "ties keep the earlier candidate")
	assert.Len(t, set.Cards, 3)
}

func TestLocateCardsEmptyIsNotAnError(t *testing.T) {
	page := openHTML(t, `<p>Loading</p>`, nil)
	set, err := newTestScraper(DefaultOptions()).LocateCards(page)
	require.NoError(t, err)
	assert.Empty(t, set.Cards)
}

type staleScope struct{}

func (staleScope) FindAll(string) ([]dom.Element, error) { return nil, dom.ErrStale }

func TestLocateCardsPropagatesStale(t *testing.T) {
	_, err := newTestScraper(DefaultOptions()).LocateCards(staleScope{})
	assert.ErrorIs(t, err, dom.ErrStale)
}

func TestExtractRecord(t *testing.T) {
	tests := []struct {
		name string
		card string
		want PersonRecord
	}{
		{
			name: "positional lines with role refinement",
			card: `<div class="t-Card"><h3>Jane Doe</h3><div>Dept of X</div><div>Student - Foo</div></div>`,
			want: PersonRecord{Name: "Jane Doe", Department: "Dept of X", Affiliation: "Student - Foo"},
		},
		{
			name: "first line used when no title element",
			card: `<div class="t-Card">Plain Name<br>Physics</div>`,
			want: PersonRecord{Name: "Plain Name", Department: "Physics"},
		},
		{
			name: "structured description and email token",
			card: `<div class="t-ContentRow-wrap">
				<div class="t-ContentRow-content"><h3><a href="/p/ann">Ann Lee</a></h3></div>
				<div class="t-ContentRow-body"><div class="t-ContentRow-desc">History<br>Lecturer</div></div>
				<div class="t-ContentRow-misc">(ann@stanford.edu);</div>
			</div>`,
			want: PersonRecord{Name: "Ann Lee", Email: "ann@stanford.edu", Department: "History", Affiliation: "Lecturer"},
		},
		{
			name: "role marker in third line overrides guess",
			card: `<div class="t-Card"><h3>Bob Kim</h3><p>Biology</p><p>Room 12</p><p>Faculty</p></div>`,
			want: PersonRecord{Name: "Bob Kim", Department: "Biology", Affiliation: "Faculty"},
		},
		{
			name: "mailto wins over text",
			card: `<div class="t-Card"><a class="t-Card-title" href="/p/j">Jane</a><p><a href="MAILTO:jane@stanford.edu?subject=hi">other@stanford.edu</a></p></div>`,
			want: PersonRecord{Name: "Jane", Email: "jane@stanford.edu", Department: "other@stanford.edu"},
		},
	}

	s := newTestScraper(DefaultOptions())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := openHTML(t, tt.card, nil)
			rec, ok, err := s.ExtractRecord(context.Background(), page, firstEl(t, page, "body > *"))
			require.NoError(t, err)
			require.True(t, ok)
			if diff := cmp.Diff(tt.want, *rec); diff != "" {
				t.Errorf("record mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractRecordSkipsEmptyCard(t *testing.T) {
	page := openHTML(t, `<div class="t-Card"><span> </span><script>var x = 1;</script></div>`, nil)
	rec, ok, err := newTestScraper(DefaultOptions()).ExtractRecord(context.Background(), page, firstEl(t, page, ".t-Card"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, rec)
}

func TestExtractRecordIsIdempotent(t *testing.T) {
	page := openHTML(t, `<div class="t-Card"><a class="t-Card-title" href="/p/x">Jane Doe</a><p>Dept of X</p><p>Staff</p></div>`, nil)
	s := newTestScraper(DefaultOptions())
	card := firstEl(t, page, ".t-Card")

	first, ok, err := s.ExtractRecord(context.Background(), page, card)
	require.NoError(t, err)
	require.True(t, ok)
	second, ok, err := s.ExtractRecord(context.Background(), page, card)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, cmp.Equal(first, second))
}

func TestExtractRecordReportsStaleCard(t *testing.T) {
	page := openHTML(t, `<div class="t-Card"><a class="t-Card-title" href="/p/x">Jane Doe</a></div>`, nil)
	card := firstEl(t, page, ".t-Card")
	require.NoError(t, page.Navigate(listURL))

	rec, ok, err := newTestScraper(DefaultOptions()).ExtractRecord(context.Background(), page, card)
	assert.True(t, dom.IsStale(err))
	assert.False(t, ok)
	assert.Nil(t, rec)
}

// trackingPage считает закрытия вкладок и возвраты фокуса.
type trackingPage struct {
	dom.Page
	activations int
	children    []*trackedChild
}

type trackedChild struct {
	dom.Page
	closed bool
}

func (p *trackingPage) OpenInNewContext(url string) (dom.Page, error) {
	child, err := p.Page.OpenInNewContext(url)
	if err != nil {
		return nil, err
	}
	tc := &trackedChild{Page: child}
	p.children = append(p.children, tc)
	return tc, nil
}

func (p *trackingPage) Activate() error {
	p.activations++
	return p.Page.Activate()
}

func (c *trackedChild) CloseContext() error {
	c.closed = true
	return c.Page.CloseContext()
}

func TestProfileLookupCleansUp(t *testing.T) {
	opts := DefaultOptions()
	opts.FollowProfile = true
	s := newTestScraper(opts)

	body := `<div class="t-Card"><a class="t-Card-title" href="/p/jane">Jane Doe</a><p>Dept of X</p></div>
		<div class="t-Card"><a class="t-Card-title" href="/p/missing">John Roe</a><p>Physics</p></div>`
	profiles := static.MapLoader{
		"https://who.test/p/jane": `<html><body><a href="mailto:jane@stanford.edu">Email</a></body></html>`,
	}
	page := &trackingPage{Page: openHTML(t, body, profiles)}
	cards, err := page.FindAll(".t-Card")
	require.NoError(t, err)

	rec, ok, err := s.ExtractRecord(context.Background(), page, cards[0])
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "jane@stanford.edu", rec.Email)
	require.Len(t, page.children, 1)
	assert.True(t, page.children[0].closed)
	assert.Equal(t, 1, page.activations)

	// профиль не открылся: пустой email, фокус всё равно возвращён
	rec, ok, err = s.ExtractRecord(context.Background(), page, cards[1])
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "", rec.Email)
	assert.Equal(t, 2, page.activations)
	assert.Equal(t, listURL, page.URL())
}

func TestProfileLookupOffByDefault(t *testing.T) {
	page := &trackingPage{Page: openHTML(t, `<div class="t-Card"><a class="t-Card-title" href="/p/jane">Jane</a></div>`, nil)}
	rec, ok, err := newTestScraper(DefaultOptions()).ExtractRecord(context.Background(), page, firstEl(t, page, ".t-Card"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "", rec.Email)
	assert.Empty(t, page.children)
}

func TestAdvancePage(t *testing.T) {
	next := static.MapLoader{
		"https://who.test/list?p=4": "<html><body>four</body></html>",
		"https://who.test/list?p=6": "<html><body>six</body></html>",
	}
	tests := []struct {
		name    string
		body    string
		want    bool
		wantURL string
	}{
		{
			name:    "numeric link after active page",
			body:    `<div class="t-Report-pagination"><a href="/list?p=2">2</a><strong aria-current="page">3</strong><a href="/list?p=4"> 4 </a></div>`,
			want:    true,
			wantURL: "https://who.test/list?p=4",
		},
		{
			name:    "next control when number is missing",
			body:    `<div class="t-Report-pagination"><strong aria-current="page">5</strong></div><a aria-label="Next" href="/list?p=6">&gt;</a>`,
			want:    true,
			wantURL: "https://who.test/list?p=6",
		},
		{
			name:    "non numeric indicator falls back to next",
			body:    `<strong aria-current="page">Page 5</strong><a title="Next" href="/list?p=6">Next</a>`,
			want:    true,
			wantURL: "https://who.test/list?p=6",
		},
		{
			name:    "failed numeric click falls back to next",
			body:    `<div class="t-Report-pagination"><strong aria-current="page">3</strong><a class="t-Report-paginationLink" href="javascript:void(0)">4</a></div><a aria-label="Next" href="/list?p=6">Next</a>`,
			want:    true,
			wantURL: "https://who.test/list?p=6",
		},
		{
			name:    "disabled next",
			body:    `<a aria-label="Next" class="is-disabled" href="/list?p=6">Next</a>`,
			want:    false,
			wantURL: listURL,
		},
		{
			name:    "nothing to click",
			body:    `<div>last page</div>`,
			want:    false,
			wantURL: listURL,
		},
	}

	s := newTestScraper(DefaultOptions())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := openHTML(t, tt.body, next)
			assert.Equal(t, tt.want, s.AdvancePage(context.Background(), page))
			assert.Equal(t, tt.wantURL, page.URL())
		})
	}
}

func TestAdvancePageAfterCancelledPause(t *testing.T) {
	next := static.MapLoader{"https://who.test/list?p=4": "<html><body>four</body></html>"}
	page := openHTML(t, `<div class="t-Report-pagination"><strong aria-current="page">3</strong><a href="/list?p=4">4</a></div>`, next)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// клик уже выполнен, прерванная пауза переход не отменяет
	assert.True(t, newTestScraper(DefaultOptions()).AdvancePage(ctx, page))
	assert.Equal(t, "https://who.test/list?p=4", page.URL())
}

func TestPaginationState(t *testing.T) {
	s := newTestScraper(DefaultOptions())

	page := openHTML(t, `<div class="t-Report-paginationText"><strong>12</strong></div>`, nil)
	assert.Equal(t, PaginationState{Current: 12, Known: true}, s.PaginationState(page))

	page = openHTML(t, `<div>no pager</div>`, nil)
	assert.Equal(t, PaginationState{}, s.PaginationState(page))
}

func TestSelectorsMerge(t *testing.T) {
	merged := DefaultSelectors().Merge(&Selectors{CardCandidates: []string{".person"}, ProfileBody: "main"})
	assert.Equal(t, []string{".person"}, merged.CardCandidates)
	assert.Equal(t, "main", merged.ProfileBody)
	assert.Equal(t, DefaultSelectors().NextControls, merged.NextControls)
}
