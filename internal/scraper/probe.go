package scraper

import (
	"stanfordwho-parser/internal/dom"
)

// probe: один шаг каскада: селектор и способ прочитать значение из первого
// совпавшего элемента. ok=false: шаг не подошёл, идём дальше.
type probe struct {
	selector string
	read     func(el dom.Element) (value string, ok bool)
}

type probeHit struct {
	selector string
	el       dom.Element
	value    string
}

// firstMatch вычисляет probes по порядку, выигрывает первый подошедший.
func firstMatch(scope dom.Scope, probes []probe) (probeHit, bool) {
	for _, p := range probes {
		el, found := dom.FindFirst(scope, p.selector)
		if !found {
			continue
		}
		value, ok := p.read(el)
		if !ok {
			continue
		}
		return probeHit{selector: p.selector, el: el, value: value}, true
	}
	return probeHit{}, false
}

func probesFor(selectors []string, read func(dom.Element) (string, bool)) []probe {
	probes := make([]probe, 0, len(selectors))
	for _, sel := range selectors {
		probes = append(probes, probe{selector: sel, read: read})
	}
	return probes
}

func present(dom.Element) (string, bool) {
	return "", true
}
