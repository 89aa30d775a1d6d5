package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/andybalholm/cascadia"
	"gopkg.in/yaml.v3"

	"stanfordwho-parser/internal/scraper"
)

// LoadSelectors читает YAML со списками селекторов и накладывает его на
// встроенные значения.
func LoadSelectors(filePath string) (*scraper.Selectors, error) {
	if filePath == "" {
		return nil, fmt.Errorf("selectors file path is empty")
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read selectors file: %w", err)
	}

	var override scraper.Selectors
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("failed to parse selectors YAML: %w", err)
	}

	merged := scraper.DefaultSelectors().Merge(&override)
	if err := validateSelectors(merged); err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}

	return merged, nil
}

// Selectors возвращает селекторы из selectors_file или встроенные.
func (c *Config) Selectors() (*scraper.Selectors, error) {
	if c.SelectorsFile == "" {
		return scraper.DefaultSelectors(), nil
	}

	filePath := c.SelectorsFile
	// Если путь относительный и файла нет, ищем в configs/
	if !filepath.IsAbs(filePath) {
		if _, err := os.Stat(filePath); err != nil {
			filePath = filepath.Join("configs", filePath)
		}
	}

	return LoadSelectors(filePath)
}

// validateSelectors проверяет обязательные списки и синтаксис каждого селектора.
func validateSelectors(s *scraper.Selectors) error {
	if len(s.CardCandidates) == 0 {
		return fmt.Errorf("card_candidates is required")
	}
	if len(s.NameCandidates) == 0 {
		return fmt.Errorf("name_candidates is required")
	}
	if len(s.NextControls) == 0 {
		return fmt.Errorf("next_controls is required")
	}

	all := [][]string{
		s.CardCandidates, s.ScopeCandidates, s.NameCandidates, s.ProfileReady,
		s.ActivePage, s.PageNumberLinks, s.NextControls,
		{s.Description, s.MailtoLinks, s.ProfileBody},
	}
	for _, group := range all {
		for _, sel := range group {
			if sel == "" {
				continue
			}
			if _, err := cascadia.ParseGroup(sel); err != nil {
				return fmt.Errorf("invalid selector %q: %w", sel, err)
			}
		}
	}
	return nil
}

// ScraperOptions переводит конфиг в явные опции ядра.
func (c *Config) ScraperOptions() scraper.Options {
	opts := scraper.DefaultOptions()
	opts.EmailDomain = c.Scrape.EmailDomain
	if len(c.Scrape.RoleMarkers) > 0 {
		opts.RoleMarkers = append([]string(nil), c.Scrape.RoleMarkers...)
	}
	opts.FollowProfile = c.Scrape.FollowProfile
	opts.ProfileTimeout = c.GetWaitTimeout()
	opts.PollInterval = c.GetPollInterval()
	opts.PagePause = c.GetPagePause()
	return opts
}
