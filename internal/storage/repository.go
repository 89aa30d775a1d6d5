package storage

import (
	"context"
	"errors"

	"stanfordwho-parser/internal/scraper"
)

// RecordSink принимает записи по одной и сбрасывает их после каждой страницы.
// Один писатель, только дозапись.
type RecordSink interface {
	// Write добавляет запись; pageIndex: номер страницы сессии (с 1).
	Write(ctx context.Context, pageIndex int, rec *scraper.PersonRecord) error

	// Flush делает записанное долговечным.
	Flush(ctx context.Context) error

	Close() error
}

// MultiSink пишет в несколько приёмников по порядку; первая ошибка прерывает.
type MultiSink []RecordSink

func (m MultiSink) Write(ctx context.Context, pageIndex int, rec *scraper.PersonRecord) error {
	for _, s := range m {
		if err := s.Write(ctx, pageIndex, rec); err != nil {
			return err
		}
	}
	return nil
}

func (m MultiSink) Flush(ctx context.Context) error {
	for _, s := range m {
		if err := s.Flush(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Close закрывает все приёмники, даже если какой-то упал.
func (m MultiSink) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
