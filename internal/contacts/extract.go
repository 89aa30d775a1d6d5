package contacts

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const contactLabel = "contact:"

// Extract находит в каждом <p> с меткой "Contact:" ссылки после метки и
// привязывает их к ближайшему div[role=group] с aria-label.
func Extract(r io.Reader) ([]Contact, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	w := &walker{}
	for _, n := range doc.Nodes {
		w.visit(n, "")
	}
	return w.found, nil
}

type walker struct {
	found []Contact
	// внутри <p>, где уже встретилась метка
	inContact bool
}

func (w *walker) visit(n *html.Node, club string) {
	switch n.Type {
	case html.TextNode:
		if !w.inContact && strings.Contains(strings.ToLower(n.Data), contactLabel) && insideParagraph(n) {
			w.inContact = true
		}
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Div:
			if label, ok := groupLabel(n); ok {
				club = label
			}
		case atom.P:
			prev := w.inContact
			w.inContact = false
			w.children(n, club)
			w.inContact = prev
			return
		case atom.A:
			if w.inContact {
				if name := strings.TrimSpace(goquery.NewDocumentFromNode(n).Text()); name != "" {
					w.found = append(w.found, Contact{Name: name, Club: club})
				}
				return
			}
		}
	}
	w.children(n, club)
}

func (w *walker) children(n *html.Node, club string) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.visit(c, club)
	}
}

// groupLabel: div[role=group] с непустым aria-label.
func groupLabel(n *html.Node) (string, bool) {
	var role, label string
	for _, a := range n.Attr {
		switch strings.ToLower(a.Key) {
		case "role":
			role = strings.ToLower(a.Val)
		case "aria-label":
			label = strings.TrimSpace(a.Val)
		}
	}
	return label, role == "group" && label != ""
}

func insideParagraph(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.DataAtom == atom.P {
			return true
		}
	}
	return false
}
