package models

import (
	"fmt"

	custom_error "splitters/pkg/errors"
)

type ChangeKind string

const (
	ChangeAddLocation    ChangeKind = "add_location"
	ChangeUpdateLocation ChangeKind = "update_location"
	ChangeDeleteLocation ChangeKind = "delete_location"
	ChangeAddSplitter    ChangeKind = "add_splitter"
	ChangeUpdateSplitter ChangeKind = "update_splitter"
	ChangeDeleteSplitter ChangeKind = "delete_splitter"
)

// Change is a single entity mutation. Backends persist it and the store replays it on its
// in-memory copy once the backend accepted it.
type Change struct {
	Kind       ChangeKind
	LocationID string
	SplitterID string
	Location   *Location
	Splitter   *Splitter

	// ExpectedVersion, when non-zero, must equal the persisted version for the write to land.
	ExpectedVersion uint64
}

// ApplyTo returns a new location list with the change applied. The input is not modified.
func (c Change) ApplyTo(locations []Location) ([]Location, error) {
	out := CloneLocations(locations)

	switch c.Kind {
	case ChangeAddLocation:
		if c.Location == nil {
			return nil, fmt.Errorf("%s: missing location payload", c.Kind)
		}
		if indexOfLocation(out, c.Location.ID) >= 0 {
			return nil, fmt.Errorf("location %s: %w", c.Location.ID, custom_error.ErrDuplicateLocation)
		}
		loc := c.Location.Clone()
		for i := range loc.Splitters {
			loc.Splitters[i].LocationID = loc.ID
		}
		return append(out, loc), nil

	case ChangeUpdateLocation:
		if c.Location == nil {
			return nil, fmt.Errorf("%s: missing location payload", c.Kind)
		}
		i := indexOfLocation(out, c.LocationID)
		if i < 0 {
			return nil, fmt.Errorf("location %s: %w", c.LocationID, custom_error.ErrLocationNotFound)
		}
		out[i].Name = c.Location.Name
		out[i].Notes = c.Location.Notes
		out[i].TeamID = c.Location.TeamID
		return out, nil

	case ChangeDeleteLocation:
		i := indexOfLocation(out, c.LocationID)
		if i < 0 {
			return nil, fmt.Errorf("location %s: %w", c.LocationID, custom_error.ErrLocationNotFound)
		}
		return append(out[:i], out[i+1:]...), nil

	case ChangeAddSplitter:
		if c.Splitter == nil {
			return nil, fmt.Errorf("%s: missing splitter payload", c.Kind)
		}
		i := indexOfLocation(out, c.LocationID)
		if i < 0 {
			return nil, fmt.Errorf("location %s: %w", c.LocationID, custom_error.ErrLocationNotFound)
		}
		if _, exists := out[i].Splitter(c.Splitter.ID); exists {
			return nil, fmt.Errorf("splitter %s: %w", c.Splitter.ID, custom_error.ErrDuplicateSplitter)
		}
		s := *c.Splitter
		s.LocationID = c.LocationID
		out[i].Splitters = append(out[i].Splitters, s)
		return out, nil

	case ChangeUpdateSplitter:
		if c.Splitter == nil {
			return nil, fmt.Errorf("%s: missing splitter payload", c.Kind)
		}
		i := indexOfLocation(out, c.LocationID)
		if i < 0 {
			return nil, fmt.Errorf("location %s: %w", c.LocationID, custom_error.ErrLocationNotFound)
		}
		j := indexOfSplitter(out[i].Splitters, c.SplitterID)
		if j < 0 {
			return nil, fmt.Errorf("splitter %s: %w", c.SplitterID, custom_error.ErrSplitterNotFound)
		}
		s := *c.Splitter
		s.ID = c.SplitterID
		s.LocationID = c.LocationID
		out[i].Splitters[j] = s
		return out, nil

	case ChangeDeleteSplitter:
		i := indexOfLocation(out, c.LocationID)
		if i < 0 {
			return nil, fmt.Errorf("location %s: %w", c.LocationID, custom_error.ErrLocationNotFound)
		}
		j := indexOfSplitter(out[i].Splitters, c.SplitterID)
		if j < 0 {
			return nil, fmt.Errorf("splitter %s: %w", c.SplitterID, custom_error.ErrSplitterNotFound)
		}
		out[i].Splitters = append(out[i].Splitters[:j], out[i].Splitters[j+1:]...)
		return out, nil
	}

	return nil, fmt.Errorf("unknown change kind %q", c.Kind)
}

func indexOfLocation(locations []Location, id string) int {
	for i, l := range locations {
		if l.ID == id {
			return i
		}
	}

	return -1
}

func indexOfSplitter(splitters []Splitter, id string) int {
	for i, s := range splitters {
		if s.ID == id {
			return i
		}
	}

	return -1
}
