package config

import "testing"

func TestDefaultSettingsAreValid(t *testing.T) {
	settings := DefaultSettings()
	if err := settings.Validate(); err != nil {
		t.Errorf("default settings invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
		wantOK bool
	}{
		{"defaults", func(*Settings) {}, true},
		{"zero minimum score", func(s *Settings) { s.MinimumScore = 0 }, true},
		{"negative minimum score", func(s *Settings) { s.MinimumScore = -0.5 }, false},
		{"zero option page size", func(s *Settings) { s.OptionPageSize = 0 }, false},
		{"zero workers", func(s *Settings) { s.IndexWorkers = 0 }, false},
		{"missing db path", func(s *Settings) { s.DBPath = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := DefaultSettings()
			tt.mutate(&settings)
			err := settings.Validate()
			if (err == nil) != tt.wantOK {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.wantOK)
			}
		})
	}
}
