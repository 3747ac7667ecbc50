package config

import "testing"

func TestValidateRejectsOutOfRangeValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"negative maybePenalty", func(c *Config) { c.MaybePenalty = -1 }, true},
		{"zero maxLoad", func(c *Config) { c.MaxLoad = 0 }, true},
		{"negative loadPenalty", func(c *Config) { c.LoadPenalty = -1 }, true},
		{"unknown absence mode", func(c *Config) { c.AbsenceMode = "sometimes" }, true},
		{"zero time limit", func(c *Config) { c.GenerationTimeLimitSeconds = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Errorf("Validate() returned nil error, want an error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() returned error %v, want nil", err)
			}
		})
	}
}
