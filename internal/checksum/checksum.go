package checksum

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateRecordHash генерирует SHA256 по полям записи.
// Формула: SHA256(name|email|affiliation|department), email в нижнем регистре
func (g *Generator) GenerateRecordHash(name, email, affiliation, department string) string {
	content := fmt.Sprintf("%s|%s|%s|%s",
		strings.TrimSpace(name),
		strings.ToLower(strings.TrimSpace(email)),
		strings.TrimSpace(affiliation),
		strings.TrimSpace(department),
	)

	hash := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%x", hash)
}

// Tracker считает повторы записей за сессию. Записи не отбрасываются:
// только отмечаются.
type Tracker struct {
	gen        *Generator
	seen       map[string]int
	duplicates int
}

func NewTracker() *Tracker {
	return &Tracker{gen: NewGenerator(), seen: make(map[string]int)}
}

// Seen отмечает запись и сообщает, встречалась ли она раньше.
func (t *Tracker) Seen(name, email, affiliation, department string) bool {
	h := t.gen.GenerateRecordHash(name, email, affiliation, department)
	t.seen[h]++
	if t.seen[h] > 1 {
		t.duplicates++
		return true
	}
	return false
}

// Duplicates: сколько раз Seen вернул true.
func (t *Tracker) Duplicates() int {
	return t.duplicates
}
