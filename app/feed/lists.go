package feed

import (
	"bufio"
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

// watchList is the YAML form of the subjects and feeds files.
type watchList struct {
	Subjects []string `yaml:"subjects"`
	Feeds    []string `yaml:"feeds"`
}

// LoadSubjects reads the subject list at path, falling back to DefaultSubjects
// when the file does not exist.
func LoadSubjects(path string) ([]string, error) {
	entries, found, err := loadList(path, func(w watchList) []string { return w.Subjects })
	if err != nil {
		return nil, err
	}
	if !found {
		slog.Debug("Subjects file not found, using built-in list", "path", path, "count", len(DefaultSubjects))
		return append([]string(nil), DefaultSubjects...), nil
	}
	return unique(entries), nil
}

// LoadFeeds reads extra backstop feed URLs at path. A missing file yields none.
func LoadFeeds(path string) ([]string, error) {
	entries, found, err := loadList(path, func(w watchList) []string { return w.Feeds })
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return entries, nil
}

// MergeFeeds returns base followed by the extras it does not already contain.
func MergeFeeds(base, extra []string) []string {
	merged := make([]string, 0, len(base)+len(extra))
	known := make(map[string]bool, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, feedURL := range list {
			if feedURL == "" || known[feedURL] {
				continue
			}
			known[feedURL] = true
			merged = append(merged, feedURL)
		}
	}
	return merged
}

func loadList(path string, pick func(watchList) []string) ([]string, bool, error) {
	if path == "" {
		return nil, false, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		var list watchList
		if err := yaml.Unmarshal(data, &list); err != nil {
			return nil, false, fmt.Errorf("failed to parse YAML %s: %w", path, err)
		}
		return trimEntries(pick(list)), true, nil
	default:
		entries, err := parseLines(data)
		if err != nil {
			return nil, false, fmt.Errorf("failed to read %s: %w", path, err)
		}
		return entries, true, nil
	}
}

// parseLines returns trimmed non-empty lines, skipping "#" comments.
func parseLines(data []byte) ([]string, error) {
	var entries []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func trimEntries(values []string) []string {
	entries := make([]string, 0, len(values))
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			entries = append(entries, value)
		}
	}
	return entries
}

// unique drops case-insensitive repeats, keeping the first spelling.
func unique(values []string) []string {
	caser := cases.Fold()
	known := make(map[string]bool, len(values))
	result := make([]string, 0, len(values))
	for _, value := range values {
		key := caser.String(value)
		if known[key] {
			continue
		}
		known[key] = true
		result = append(result, value)
	}
	return result
}
