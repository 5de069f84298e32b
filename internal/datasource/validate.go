package datasource

import (
	"fmt"

	"github.com/vanderheijden86/stageboard/pkg/viewmodel"
)

// ValidateSource loads the source and records whether it holds a usable
// snapshot. A snapshot that decodes but lacks required parts is invalid.
func ValidateSource(s *DataSource) error {
	snap, err := LoadFromSource(*s)
	if err != nil {
		s.Valid = false
		s.ValidationError = err.Error()
		return err
	}
	if err := viewmodel.Validate(snap); err != nil {
		s.Valid = false
		s.ValidationError = err.Error()
		return err
	}
	s.Valid = true
	s.ValidationError = ""
	s.RowCount = snap.DataViews[0].Categorical.Values[0].Len()
	return nil
}

// SelectBestSource picks the freshest valid source; ties go to the higher
// priority type (sqlite > xlsx > json).
func SelectBestSource(sources []DataSource) (DataSource, error) {
	var valid []DataSource
	for _, s := range sources {
		if s.Valid {
			valid = append(valid, s)
		}
	}
	if len(valid) == 0 {
		return DataSource{}, fmt.Errorf("select source: %w", ErrNoSources)
	}
	sortSources(valid)
	return valid[0], nil
}
