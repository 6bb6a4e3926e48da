package fontsize

// Config holds the audit's tunable constants. The zero value is usable:
// defaults() fills in the standard legibility floor and pass threshold.
type Config struct {
	// MinimumLegibleSize is the font-size floor in CSS pixels. Text
	// rendered below it counts as illegible.
	MinimumLegibleSize float64 `yaml:"minimum_legible_size"`

	// PassThreshold is the percentage of legible text required for the
	// audit to pass.
	PassThreshold float64 `yaml:"pass_threshold"`

	// DisplayTemplate formats the summary value from the legible-text
	// percentage.
	DisplayTemplate string `yaml:"display_template"`
}

func (c *Config) defaults() {
	if c.MinimumLegibleSize <= 0 {
		c.MinimumLegibleSize = 12
	}
	if c.PassThreshold <= 0 {
		c.PassThreshold = 60
	}
	if c.DisplayTemplate == "" {
		c.DisplayTemplate = "%.0f%% legible text"
	}
}
