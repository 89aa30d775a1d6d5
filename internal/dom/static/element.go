package static

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"stanfordwho-parser/internal/dom"
	"stanfordwho-parser/internal/normalize"
)

var (
	spaceRun = regexp.MustCompile(`[ \t\r\n\f]+`)
	breakRun = regexp.MustCompile(`[ \t]*\n[ \t\n]*`)
)

// Теги, которые браузер рендерит с переводом строки вокруг.
var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"dd": true, "div": true, "dl": true, "dt": true, "fieldset": true,
	"figcaption": true, "figure": true, "footer": true, "form": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "li": true, "main": true, "nav": true,
	"ol": true, "p": true, "pre": true, "section": true, "table": true,
	"tbody": true, "td": true, "th": true, "thead": true, "tr": true, "ul": true,
}

var skipTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true, "head": true,
}

type Element struct {
	page    *Page
	sel     *goquery.Selection
	version int
}

func (e *Element) alive() error {
	if e.page.closed || e.page.version != e.version {
		return dom.ErrStale
	}
	return nil
}

func (e *Element) FindAll(selector string) ([]dom.Element, error) {
	if err := e.alive(); err != nil {
		return nil, err
	}
	m, err := compile(selector)
	if err != nil {
		return nil, err
	}
	return e.page.wrap(e.sel.FindMatcher(m)), nil
}

func (e *Element) Text() (string, error) {
	if err := e.alive(); err != nil {
		return "", err
	}
	var b strings.Builder
	for _, n := range e.sel.Nodes {
		renderText(&b, n)
	}
	return strings.TrimSpace(breakRun.ReplaceAllString(b.String(), "\n")), nil
}

func (e *Element) Attribute(name string) (string, bool, error) {
	if err := e.alive(); err != nil {
		return "", false, err
	}
	v, ok := e.sel.Attr(name)
	return v, ok, nil
}

func (e *Element) Interactable() (bool, error) {
	if err := e.alive(); err != nil {
		return false, err
	}
	if len(e.sel.Nodes) == 0 {
		return false, nil
	}
	n := e.sel.Nodes[0]
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Type == html.ElementNode && isHidden(cur) {
			return false, nil
		}
	}
	return !isDisabled(n), nil
}

// Click переходит по href элемента. Другого поведения без JS нет.
func (e *Element) Click() error {
	if err := e.alive(); err != nil {
		return err
	}
	href, _ := e.sel.Attr("href")
	target := normalize.ResolveURL(e.page.url, href)
	if target == "" {
		return ErrNotNavigable
	}
	return e.page.Navigate(target)
}

// renderText приближает innerText: блоки с новой строки, пробелы схлопнуты,
// скрытое и script/style пропускаются.
func renderText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(spaceRun.ReplaceAllString(n.Data, " "))
		return
	case html.ElementNode:
		if skipTags[n.Data] || isHidden(n) {
			return
		}
		if n.Data == "br" {
			b.WriteString("\n")
			return
		}
	case html.CommentNode, html.DoctypeNode:
		return
	}

	block := n.Type == html.ElementNode && blockTags[n.Data]
	if block {
		b.WriteString("\n")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderText(b, c)
	}
	if block {
		b.WriteString("\n")
	}
}

func attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func isHidden(n *html.Node) bool {
	if _, ok := attr(n, "hidden"); ok {
		return true
	}
	if v, _ := attr(n, "aria-hidden"); v == "true" {
		return true
	}
	style, _ := attr(n, "style")
	style = strings.ReplaceAll(strings.ToLower(style), " ", "")
	return strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden")
}

func isDisabled(n *html.Node) bool {
	if _, ok := attr(n, "disabled"); ok {
		return true
	}
	if v, _ := attr(n, "aria-disabled"); v == "true" {
		return true
	}
	class, _ := attr(n, "class")
	for _, c := range strings.Fields(class) {
		if c == "is-disabled" {
			return true
		}
	}
	return false
}
