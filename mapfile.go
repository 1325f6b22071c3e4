package gridnav

import (
	"encoding/json"
	"fmt"
	"os"
)

// MapFile is the on-disk form of a GridMap.
type MapFile struct {
	Width    int      `json:"width"`
	Height   int      `json:"height"`
	Diagonal bool     `json:"diagonal"`
	Layout   []string `json:"layout"`
}

// ToMapFile captures m in its serializable form.
func (m *GridMap) ToMapFile() MapFile {
	return MapFile{
		Width:    m.Width,
		Height:   m.Height,
		Diagonal: m.Diagonal,
		Layout:   m.Layout(),
	}
}

// GridMap rebuilds the map, checking the declared size against the layout.
func (f MapFile) GridMap() (*GridMap, error) {
	m, err := ParseLayout(f.Layout, f.Diagonal)
	if err != nil {
		return nil, err
	}
	if (f.Width != 0 && f.Width != m.Width) || (f.Height != 0 && f.Height != m.Height) {
		return nil, fmt.Errorf("%w: declared %dx%d, layout is %dx%d",
			ErrInvalidLayout, f.Width, f.Height, m.Width, m.Height)
	}
	return m, nil
}

// SaveGridMap serializes and saves the map to a JSON file
func SaveGridMap(m *GridMap, filename string) error {
	data, err := json.MarshalIndent(m.ToMapFile(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal map: %w", err)
	}

	err = os.WriteFile(filename, data, 0644)
	if err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// LoadGridMap deserializes and loads the map from a JSON file
func LoadGridMap(filename string) (*GridMap, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var f MapFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal map: %w", err)
	}
	m, err := f.GridMap()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return m, nil
}
