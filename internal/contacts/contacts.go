// Package contacts converts a club directory page into a name,club list and
// derives outreach material from it.
package contacts

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// OfficersPlaceholder: ссылка-рассылка вместо имени, её пропускаем.
const OfficersPlaceholder = "Email group officers"

type Contact struct {
	Name string
	Club string
}

var contactHeader = []string{"name", "club"}

// WriteCSV пишет заголовок name,club и строки.
func WriteCSV(w io.Writer, contacts []Contact) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(contactHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, c := range contacts {
		if err := cw.Write([]string{c.Name, c.Club}); err != nil {
			return fmt.Errorf("failed to write contact: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV читает name,club. Заголовок необязателен, club может отсутствовать.
func ReadCSV(r io.Reader) ([]Contact, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var out []Contact
	for line := 1; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read contacts line %d: %w", line, err)
		}
		if len(row) == 0 {
			continue
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(row[0]), contactHeader[0]) {
			continue
		}
		c := Contact{Name: strings.TrimSpace(row[0])}
		if len(row) > 1 {
			c.Club = strings.TrimSpace(row[1])
		}
		out = append(out, c)
	}
	return out, nil
}

// JoinNames склеивает имена через ", ", без OfficersPlaceholder.
func JoinNames(contacts []Contact) string {
	names := make([]string, 0, len(contacts))
	for _, c := range contacts {
		if c.Name == "" || c.Name == OfficersPlaceholder {
			continue
		}
		names = append(names, c.Name)
	}
	return strings.Join(names, ", ")
}
