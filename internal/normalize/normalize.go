package normalize

import (
	"net/url"
	"regexp"
	"strings"
)

var spaceRun = regexp.MustCompile(`\s+`)

// Options управляет чисткой текста карточек.
type Options struct {
	TrimNBSP       bool
	CollapseSpaces bool
}

func DefaultOptions() Options {
	return Options{TrimNBSP: true, CollapseSpaces: true}
}

type Normalizer struct {
	opts Options
}

func NewNormalizer(opts Options) *Normalizer {
	return &Normalizer{opts: opts}
}

// Lines режет отрендеренный текст на непустые строки без краевых пробелов.
func (n *Normalizer) Lines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var lines []string
	for _, ln := range strings.Split(text, "\n") {
		ln = n.Clean(ln)
		if ln != "" {
			lines = append(lines, ln)
		}
	}
	return lines
}

// Clean чистит одну строку: NBSP, повторные пробелы, края.
func (n *Normalizer) Clean(s string) string {
	if n.opts.TrimNBSP {
		// Заменяем NBSP (\u00A0) на обычный пробел
		s = strings.ReplaceAll(s, "\u00A0", " ")
	}
	if n.opts.CollapseSpaces {
		s = spaceRun.ReplaceAllString(s, " ")
	}
	return strings.TrimSpace(s)
}

// Space ведёт себя как XPath normalize-space().
func Space(s string) string {
	s = strings.ReplaceAll(s, "\u00A0", " ")
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

// EmailToken снимает пунктуацию, прилипшую к адресу в тексте.
func EmailToken(token string) string {
	return strings.Trim(strings.TrimSpace(token), ",;()[]")
}

// MailtoAddress достаёт адрес из href вида mailto:addr?subject=...
func MailtoAddress(href string) string {
	href = strings.TrimSpace(href)
	idx := strings.Index(strings.ToLower(href), "mailto:")
	if idx < 0 {
		return ""
	}
	addr := href[idx+len("mailto:"):]
	if q := strings.IndexAny(addr, "?#"); q > -1 {
		addr = addr[:q]
	}
	if unescaped, err := url.PathUnescape(addr); err == nil {
		addr = unescaped
	}
	return strings.TrimSpace(addr)
}

// ResolveURL делает ссылку абсолютной относительно base. Пустая строка:
// ссылка не ведёт на страницу (javascript:, только якорь и т.п.).
func ResolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	lower := strings.ToLower(href)
	if strings.HasPrefix(lower, "javascript:") || strings.HasPrefix(lower, "mailto:") {
		return ""
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base == "" {
		return ref.String()
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref.String()
	}
	return baseURL.ResolveReference(ref).String()
}
