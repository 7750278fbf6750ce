package media

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/anatolykoptev/go_media/internal/engine"
)

// AllSides and MediaBiasFactCheck rating datasets. Both are JSON files in
// the data dir, loaded once and searched by partial name match.

const allsidesFile = "allsides.com.json"

// AllSidesEntry is one rating from the AllSides dataset.
type AllSidesEntry struct {
	Name       string `json:"name"`
	Bias       string `json:"bias"`
	URL        string `json:"url,omitempty"`
	Agreement  string `json:"agreement,omitempty"`
	Confidence string `json:"confidence,omitempty"`
}

// MBFCEntry is one rating from the MediaBiasFactCheck dataset.
type MBFCEntry struct {
	Name        string `json:"name"`
	Bias        string `json:"bias"`
	Profile     string `json:"profile"`
	Factual     string `json:"factual"`
	Credibility string `json:"credibility"`
	URL         string `json:"url,omitempty"`
}

var (
	allsidesOnce sync.Once
	allsidesData []AllSidesEntry
	allsidesErr  error

	mbfcOnce sync.Once
	mbfcData []MBFCEntry
	mbfcErr  error
)

func allsidesEntries() ([]AllSidesEntry, error) {
	allsidesOnce.Do(func() {
		data, err := os.ReadFile(filepath.Join(engine.Cfg.DataDir, allsidesFile))
		if err != nil {
			allsidesErr = fmt.Errorf("open AllSides dataset: %w", err)
			return
		}
		if err := json.Unmarshal(data, &allsidesData); err != nil {
			allsidesErr = fmt.Errorf("parse AllSides dataset: %w", err)
		}
	})
	return allsidesData, allsidesErr
}

func mbfcEntries() ([]MBFCEntry, error) {
	mbfcOnce.Do(func() {
		mbfcData, mbfcErr = readMBFC(filepath.Join(engine.Cfg.DataDir, mbfcFile))
	})
	return mbfcData, mbfcErr
}

// SearchAllSides returns AllSides entries whose name contains the query,
// case-insensitive, paginated.
func SearchAllSides(query string, limit, offset int) ([]AllSidesEntry, error) {
	engine.IncrAllSides()
	entries, err := allsidesEntries()
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	var results []AllSidesEntry
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Name), q) {
			results = append(results, e)
		}
	}
	return paginate(results, limit, offset), nil
}

// credibleMBFC reports whether an entry passes the credibility filter:
// medium or high credibility, or a factual rating of factual/mostly/mixed.
func credibleMBFC(e MBFCEntry) bool {
	switch e.Credibility {
	case "medium credibility", "high credibility":
		return true
	}
	switch e.Factual {
	case "factual", "mostly", "mixed":
		return true
	}
	return false
}

// SearchMBFC returns credible MBFC entries whose name contains the query,
// case-insensitive, paginated.
func SearchMBFC(query string, limit, offset int) ([]MBFCEntry, error) {
	engine.IncrMBFC()
	entries, err := mbfcEntries()
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	var results []MBFCEntry
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Name), q) && credibleMBFC(e) {
			results = append(results, e)
		}
	}
	return paginate(results, limit, offset), nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

// resetBias clears the memoized datasets. Test helper.
func resetBias() {
	allsidesOnce = sync.Once{}
	allsidesData = nil
	allsidesErr = nil
	mbfcOnce = sync.Once{}
	mbfcData = nil
	mbfcErr = nil
}
