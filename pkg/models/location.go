package models

type Location struct {
	ID        string     `json:"id" db:"id" yaml:"id"`
	Name      string     `json:"name" db:"name" yaml:"name"`
	Notes     string     `json:"notes,omitempty" db:"notes" yaml:"notes,omitempty"`
	TeamID    string     `json:"team_id,omitempty" db:"team_id" yaml:"team_id,omitempty"`
	Splitters []Splitter `json:"splitters" db:"-" yaml:"splitters"`
}

type Splitter struct {
	ID         string `json:"id" db:"id" yaml:"id"`
	LocationID string `json:"location_id,omitempty" db:"location_id" yaml:"-"`
	Model      string `json:"model" db:"model" yaml:"model"`
	Port       string `json:"port" db:"port" yaml:"port"`
	Notes      string `json:"notes,omitempty" db:"notes" yaml:"notes,omitempty"`
}

// LocationPatch carries the scalar fields of a location edit. Nil fields are left untouched.
type LocationPatch struct {
	Name   *string `json:"name"`
	Notes  *string `json:"notes"`
	TeamID *string `json:"team_id"`
}

func (p LocationPatch) IsEmpty() bool {
	return p.Name == nil && p.Notes == nil && p.TeamID == nil
}

// Merge returns a copy of l with the patch applied.
func (p LocationPatch) Merge(l Location) Location {
	merged := l.Clone()
	if p.Name != nil {
		merged.Name = *p.Name
	}
	if p.Notes != nil {
		merged.Notes = *p.Notes
	}
	if p.TeamID != nil {
		merged.TeamID = *p.TeamID
	}

	return merged
}

func (l Location) Clone() Location {
	c := l
	c.Splitters = make([]Splitter, len(l.Splitters))
	copy(c.Splitters, l.Splitters)

	return c
}

// Splitter looks up a splitter by id within the location.
func (l Location) Splitter(id string) (Splitter, bool) {
	for _, s := range l.Splitters {
		if s.ID == id {
			return s, true
		}
	}

	return Splitter{}, false
}

func CloneLocations(locations []Location) []Location {
	out := make([]Location, len(locations))
	for i, l := range locations {
		out[i] = l.Clone()
	}

	return out
}

// Snapshot is the persisted state: the ordered location list and the version it was read at.
type Snapshot struct {
	Version   uint64     `json:"version"`
	Locations []Location `json:"locations"`
}

func (s Snapshot) TotalSplitters() int {
	total := 0
	for _, l := range s.Locations {
		total += len(l.Splitters)
	}

	return total
}
