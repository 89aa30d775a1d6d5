package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// NeedsLoginWait: ручной вход нужен только для живого сайта.
func NeedsLoginWait(startURL string, skip bool) bool {
	if skip {
		return false
	}
	u, err := url.Parse(startURL)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

// WaitForManualLogin печатает инструкцию и ждёт строку из in (Enter).
// EOF тоже считается сигналом продолжать.
func WaitForManualLogin(ctx context.Context, in io.Reader, out io.Writer) error {
	const prompt = `
Sign in to the directory in the opened browser window.
Run the search so that result cards are visible on the page.
Then press Enter here to start scraping...
`
	if _, err := fmt.Fprint(out, prompt); err != nil {
		return fmt.Errorf("failed to print login prompt: %w", err)
	}

	// Чтение из stdin не прерывается: после отмены ctx горутина остаётся
	// висеть на ReadString до конца процесса. Канал буферизован, так что
	// она не заблокируется на отправке, если ответ уже никто не ждёт.
	done := make(chan error, 1)
	go func() {
		_, err := bufio.NewReader(in).ReadString('\n')
		if err == io.EOF {
			err = nil
		}
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
