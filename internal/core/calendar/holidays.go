package calendar

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/refund-checklist/internal/core/dates"
)

type holidayFile struct {
	Holidays []string `yaml:"holidays"`
}

// LoadHolidays reads a YAML document of the form
//
//	holidays:
//	  - 2025-01-01
//	  - 2025-05-01
func LoadHolidays(r io.Reader) ([]dates.PointInTime, error) {
	var f holidayFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("holiday file is empty")
		}
		return nil, fmt.Errorf("decode holidays: %w", err)
	}
	out := make([]dates.PointInTime, 0, len(f.Holidays))
	for i, s := range f.Holidays {
		p, err := dates.ParseISO(s)
		if err != nil {
			return nil, fmt.Errorf("holiday %d: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// LoadFile builds a Calendar from a YAML holiday file. An empty path
// returns the default calendar.
func LoadFile(path string) (*Calendar, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open holiday file: %w", err)
	}
	defer f.Close()

	hs, err := LoadHolidays(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return New(hs), nil
}
