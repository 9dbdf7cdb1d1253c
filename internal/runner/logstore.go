package runner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// LogStore persists result records as JSON files bucketed by date:
// <dir>/<YYYY-MM-DD>/<alias>_<HH-MM-SS>.json
type LogStore struct {
	dir string
	now func() time.Time
}

// NewLogStore creates a store rooted at dir
func NewLogStore(dir string) *LogStore {
	return &LogStore{dir: dir, now: time.Now}
}

// Save writes one result record and returns the file path
func (s *LogStore) Save(result *AccountResult) (string, error) {
	t := s.now()
	dateDir := filepath.Join(s.dir, t.Format("2006-01-02"))
	if err := os.MkdirAll(dateDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(dateDir, fmt.Sprintf("%s_%s.json", result.Alias, t.Format("15-04-05")))
	data, err := json.MarshalIndent(result, "", "    ")
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write result file: %w", err)
	}
	return path, nil
}

// LoadAll reads every stored result, newest date first and newest file first
// within a date. Unreadable files are skipped.
func (s *LogStore) LoadAll() ([]*AccountResult, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read log directory: %w", err)
	}

	var dates []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := time.Parse("2006-01-02", e.Name()); err != nil {
			continue
		}
		dates = append(dates, e.Name())
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	var results []*AccountResult
	for _, date := range dates {
		day, err := s.LoadDay(date)
		if err != nil {
			continue
		}
		results = append(results, day...)
	}
	return results, nil
}

// LoadDay reads the results of one date directory, newest file first
func (s *LogStore) LoadDay(date string) ([]*AccountResult, error) {
	dateDir := filepath.Join(s.dir, date)
	entries, err := os.ReadDir(dateDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read log directory %s: %w", dateDir, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	var results []*AccountResult
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dateDir, name))
		if err != nil {
			continue
		}
		var result AccountResult
		if err := json.Unmarshal(data, &result); err != nil {
			continue
		}
		results = append(results, &result)
	}
	return results, nil
}
