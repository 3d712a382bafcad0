package search

import (
	"fmt"
	"strings"
	"unicode"

	"splitters/pkg/models"
)

type Mode string

const (
	ModeLocation Mode = "location"
	ModeSplitter Mode = "splitter"
)

func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ModeLocation:
		return ModeLocation, nil
	case ModeSplitter:
		return ModeSplitter, nil
	}

	return "", fmt.Errorf("unknown search mode %q, expected %q or %q", raw, ModeLocation, ModeSplitter)
}

// Filter keeps the locations matching query. In location mode the location name must
// contain the query; in splitter mode at least one splitter model or port must. Matching is
// case-insensitive and an empty query keeps everything.
func Filter(locations []models.Location, query string, mode Mode) []models.Location {
	needle := strings.ToLower(query)
	out := make([]models.Location, 0, len(locations))

	for _, loc := range locations {
		if matches(loc, needle, mode) {
			out = append(out, loc)
		}
	}

	return out
}

func matches(loc models.Location, needle string, mode Mode) bool {
	if mode != ModeSplitter {
		return strings.Contains(strings.ToLower(loc.Name), needle)
	}

	for _, s := range loc.Splitters {
		if strings.Contains(strings.ToLower(s.Model), needle) || strings.Contains(strings.ToLower(s.Port), needle) {
			return true
		}
	}

	return false
}

// FormatQuery mirrors the search box: in splitter mode a lone digit gets its slash appended.
func FormatQuery(query string, mode Mode) string {
	if mode == ModeSplitter && len(query) == 1 && unicode.IsDigit(rune(query[0])) {
		return query + "/"
	}

	return query
}

// ByTeam keeps the locations assigned to teamID. An empty teamID keeps everything.
func ByTeam(locations []models.Location, teamID string) []models.Location {
	if teamID == "" {
		return locations
	}

	out := make([]models.Location, 0, len(locations))
	for _, loc := range locations {
		if loc.TeamID == teamID {
			out = append(out, loc)
		}
	}

	return out
}

type Summary struct {
	TotalLocations int `json:"total_locations"`
	TotalSplitters int `json:"total_splitters"`
}

func Summarize(locations []models.Location) Summary {
	summary := Summary{TotalLocations: len(locations)}
	for _, loc := range locations {
		summary.TotalSplitters += len(loc.Splitters)
	}

	return summary
}
