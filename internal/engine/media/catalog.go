package media

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/anatolykoptev/go_media/internal/engine"
)

// Curated outlet catalog: a CSV of hand-picked independent outlets merged
// with MediaBiasFactCheck ratings. The merged result is memoized to
// combined.json and regenerated only when that file is missing.

const (
	csvFile  = "all.csv"
	mbfcFile = "mediabiasfactcheck.com.json"
)

// Outlet is one curated media outlet with its merged bias ratings.
// Field names follow the catalog CSV columns.
type Outlet struct {
	Name         string `json:"Name"`
	Website      string `json:"Website"`
	Youtube      string `json:"Youtube"`
	About        string `json:"About"`
	TrustFactors string `json:"TrustFactors"`
	Topics       string `json:"Topics"`
	Wikipedia    string `json:"Wikipedia"`
	X            string `json:"X"`
	Bias         string `json:"Bias,omitempty"`
	Profile      string `json:"Profile,omitempty"`
	Factual      string `json:"Factual,omitempty"`
	Credibility  string `json:"Credibility,omitempty"`
}

var (
	catalogOnce sync.Once
	catalogData []Outlet
	catalogErr  error
)

// Outlets returns the merged catalog, loading it on first use.
func Outlets() ([]Outlet, error) {
	catalogOnce.Do(func() {
		catalogData, catalogErr = loadCatalog()
	})
	return catalogData, catalogErr
}

func loadCatalog() ([]Outlet, error) {
	combined := engine.Cfg.CombinedFile
	if combined == "" {
		combined = filepath.Join(engine.Cfg.DataDir, "combined.json")
	}

	if data, err := os.ReadFile(combined); err == nil {
		var outlets []Outlet
		if err := json.Unmarshal(data, &outlets); err != nil {
			return nil, fmt.Errorf("parse %s: %w", combined, err)
		}
		slog.Info("catalog loaded", slog.String("file", combined), slog.Int("outlets", len(outlets)))
		return outlets, nil
	}

	outlets, err := buildCombined()
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(outlets)
	if err != nil {
		return nil, fmt.Errorf("marshal combined catalog: %w", err)
	}
	if err := os.WriteFile(combined, data, 0o644); err != nil {
		slog.Warn("catalog memoization failed", slog.String("file", combined), slog.Any("error", err))
	}
	slog.Info("catalog built", slog.Int("outlets", len(outlets)))
	return outlets, nil
}

// buildCombined merges the outlet CSV with MBFC ratings keyed by lowercase name.
func buildCombined() ([]Outlet, error) {
	outlets, err := readOutletCSV(filepath.Join(engine.Cfg.DataDir, csvFile))
	if err != nil {
		return nil, err
	}

	facts, err := readMBFC(filepath.Join(engine.Cfg.DataDir, mbfcFile))
	if err != nil {
		return nil, err
	}
	byName := make(map[string]MBFCEntry, len(facts))
	for _, f := range facts {
		byName[strings.ToLower(f.Name)] = f
	}

	for i := range outlets {
		fact, ok := byName[strings.ToLower(outlets[i].Name)]
		if !ok {
			slog.Debug("no ratings for outlet", slog.String("name", outlets[i].Name))
			continue
		}
		outlets[i].Bias = fact.Bias
		outlets[i].Profile = fact.Profile
		outlets[i].Factual = fact.Factual
		outlets[i].Credibility = fact.Credibility
	}
	return outlets, nil
}

func readOutletCSV(path string) ([]Outlet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog CSV: %w", err)
	}
	defer f.Close()
	return parseOutletCSV(f)
}

func parseOutletCSV(r io.Reader) ([]Outlet, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var outlets []Outlet
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV row: %w", err)
		}
		outlets = append(outlets, Outlet{
			Name:         field(row, "Name"),
			Website:      field(row, "Website"),
			Youtube:      field(row, "Youtube"),
			About:        field(row, "About"),
			TrustFactors: field(row, "TrustFactors"),
			Topics:       field(row, "Topics"),
			Wikipedia:    field(row, "Wikipedia"),
			X:            field(row, "X"),
		})
	}
	return outlets, nil
}

func readMBFC(path string) ([]MBFCEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open MBFC dataset: %w", err)
	}
	var entries []MBFCEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse MBFC dataset: %w", err)
	}
	return entries, nil
}

// handlePresent reports whether a catalog handle field holds a real value.
func handlePresent(h string) bool {
	return h != "" && !strings.EqualFold(h, "n/a")
}

// FilterChannels maps requested YouTube handles to catalog handles.
// Matching is a case-insensitive partial match against the Youtube column;
// handles not in the catalog are dropped.
func FilterChannels(channels []string) ([]string, error) {
	outlets, err := Outlets()
	if err != nil {
		return nil, err
	}
	var fixed []string
	for _, raw := range channels {
		want := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(raw), "@"))
		if want == "" {
			continue
		}
		for _, o := range outlets {
			if handlePresent(o.Youtube) && strings.Contains(strings.ToLower(o.Youtube), want) {
				fixed = append(fixed, o.Youtube)
				break
			}
		}
	}
	return fixed, nil
}

// FilterUsers maps requested X usernames to catalog usernames, same rules
// as FilterChannels against the X column.
func FilterUsers(users []string) ([]string, error) {
	outlets, err := Outlets()
	if err != nil {
		return nil, err
	}
	var fixed []string
	for _, raw := range users {
		want := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(raw), "@"))
		if want == "" {
			continue
		}
		for _, o := range outlets {
			if handlePresent(o.X) && strings.Contains(strings.ToLower(o.X), want) {
				fixed = append(fixed, o.X)
				break
			}
		}
	}
	return fixed, nil
}

// TopChannels returns YouTube handles of the best catalog matches for query.
func TopChannels(query string, max int) ([]string, error) {
	outlets, err := SearchMedia(query, max, 0)
	if err != nil {
		return nil, err
	}
	var channels []string
	for _, o := range outlets {
		if handlePresent(o.Youtube) {
			channels = append(channels, o.Youtube)
		}
	}
	return channels, nil
}

// TopUsers returns X usernames of the best catalog matches for query.
func TopUsers(query string, max int) ([]string, error) {
	outlets, err := SearchMedia(query, max, 0)
	if err != nil {
		return nil, err
	}
	var users []string
	for _, o := range outlets {
		if handlePresent(o.X) {
			users = append(users, o.X)
		}
	}
	return users, nil
}

// resetCatalog clears the memoized catalog. Test helper.
func resetCatalog() {
	catalogOnce = sync.Once{}
	catalogData = nil
	catalogErr = nil
}
