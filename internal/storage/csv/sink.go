package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"stanfordwho-parser/internal/scraper"
)

// Sink пишет строки name,email,affiliation,department; заголовок первым.
type Sink struct {
	file   *os.File
	writer *csv.Writer
	rows   int
}

// Create открывает (и обрезает) файл и сразу пишет заголовок. Ошибка здесь:
// единственная фатальная для сессии.
func Create(path string) (*Sink, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output dir: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open output file: %w", err)
	}

	s := &Sink{file: file, writer: csv.NewWriter(file)}
	if err := s.writer.Write(scraper.Header); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	return s, nil
}

func (s *Sink) Write(_ context.Context, _ int, rec *scraper.PersonRecord) error {
	if err := s.writer.Write(rec.Row()); err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}
	s.rows++
	return nil
}

func (s *Sink) Flush(_ context.Context) error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	return nil
}

// Rows: сколько строк данных записано (без заголовка).
func (s *Sink) Rows() int {
	return s.rows
}

func (s *Sink) Close() error {
	s.writer.Flush()
	flushErr := s.writer.Error()
	closeErr := s.file.Close()
	if flushErr != nil {
		return fmt.Errorf("failed to flush output: %w", flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close output: %w", closeErr)
	}
	return nil
}
