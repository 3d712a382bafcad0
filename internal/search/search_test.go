package search

import (
	"strings"
	"testing"

	"splitters/internal/seed"
	"splitters/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(locations []models.Location) []string {
	out := make([]string, 0, len(locations))
	for _, l := range locations {
		out = append(out, l.Name)
	}
	return out
}

func TestFilterByLocationName(t *testing.T) {
	got := Filter(seed.Default(), "Lenana", ModeLocation)

	assert.Equal(t, []string{"Lenana-Chaka", "Lenana -Woodlands", "Lenana-Rose Avenue(Cab 1)"}, names(got))
}

func TestFilterByLocationNameIsCaseInsensitive(t *testing.T) {
	assert.Equal(t, names(Filter(seed.Default(), "Lenana", ModeLocation)), names(Filter(seed.Default(), "lENANA", ModeLocation)))
}

func TestFilterBySplitterPort(t *testing.T) {
	locations := append(seed.Default(), models.Location{
		ID:   "20",
		Name: "Kileleshwa",
		Splitters: []models.Splitter{
			{ID: "20-1", Model: "ADHS C650", Port: "1/3"},
			{ID: "20-2", Model: "ADHS C620 1", Port: "7/9"},
		},
	})

	got := Filter(locations, "7/9", ModeSplitter)

	assert.Equal(t, []string{"Kileleshwa"}, names(got))
	for _, loc := range got {
		found := false
		for _, s := range loc.Splitters {
			if strings.Contains(s.Port, "7/9") || strings.Contains(s.Model, "7/9") {
				found = true
			}
		}
		assert.True(t, found, loc.Name)
	}
}

func TestFilterBySplitterModel(t *testing.T) {
	got := Filter(seed.Default(), "jt c650", ModeSplitter)

	assert.Equal(t, []string{"Hurlinghum-Shell(CAB 5)"}, names(got))
}

func TestFilterSplitterModeIgnoresLocationName(t *testing.T) {
	assert.Empty(t, Filter(seed.Default(), "Methodist", ModeSplitter))
}

func TestFilterEmptyQueryKeepsAll(t *testing.T) {
	assert.Len(t, Filter(seed.Default(), "", ModeLocation), 19)
	assert.Len(t, Filter(seed.Default(), "", ModeSplitter), 19)
}

func TestFilterPortPrefix(t *testing.T) {
	locations := []models.Location{
		{ID: "a", Name: "A", Splitters: []models.Splitter{{ID: "1", Model: "ADHS C650", Port: "7/9"}}},
		{ID: "b", Name: "B", Splitters: []models.Splitter{{ID: "2", Model: "ADHS C650", Port: "1/7"}}},
		{ID: "c", Name: "C", Splitters: []models.Splitter{}},
	}

	assert.Equal(t, []string{"A"}, names(Filter(locations, "7/", ModeSplitter)))
}

func TestParseMode(t *testing.T) {
	mode, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeLocation, mode)

	mode, err = ParseMode("Splitter")
	require.NoError(t, err)
	assert.Equal(t, ModeSplitter, mode)

	_, err = ParseMode("team")
	assert.Error(t, err)
}

func TestFormatQuery(t *testing.T) {
	assert.Equal(t, "7/", FormatQuery("7", ModeSplitter))
	assert.Equal(t, "7", FormatQuery("7", ModeLocation))
	assert.Equal(t, "7/9", FormatQuery("7/9", ModeSplitter))
}

func TestByTeam(t *testing.T) {
	locations := []models.Location{{ID: "a", TeamID: "north"}, {ID: "b", TeamID: "south"}, {ID: "c"}}

	assert.Len(t, ByTeam(locations, ""), 3)
	got := ByTeam(locations, "north")
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, Summary{TotalLocations: 19, TotalSplitters: 52}, Summarize(seed.Default()))
}
