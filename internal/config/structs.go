//nolint:lll
package config

// Config represents the complete configuration for the gridwarp application.
// It covers every command (warp, batch, grid) and supports loading from
// configuration files, environment variables, and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Control-point grids
	Grid GridConfig `mapstructure:"grid" yaml:"grid" json:"grid"`

	// Warp engine settings
	Warp WarpConfig `mapstructure:"warp" yaml:"warp" json:"warp"`

	// Output configuration
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Batch processing configuration
	Batch BatchConfig `mapstructure:"batch" yaml:"batch" json:"batch"`
}

// GridConfig names the control-point tables. When Reference is empty a regular
// Rows x Cols lattice sized to the input raster is used instead.
type GridConfig struct {
	Reference string `mapstructure:"reference" yaml:"reference" json:"reference"`
	Observed  string `mapstructure:"observed" yaml:"observed" json:"observed"`
	Rows      int    `mapstructure:"rows" yaml:"rows" json:"rows"`
	Cols      int    `mapstructure:"cols" yaml:"cols" json:"cols"`
}

// WarpConfig contains resampling settings.
type WarpConfig struct {
	OutOfBounds string `mapstructure:"out_of_bounds" yaml:"out_of_bounds" json:"out_of_bounds"`
	FillValue   int    `mapstructure:"fill_value" yaml:"fill_value" json:"fill_value"`
	Singular    string `mapstructure:"singular" yaml:"singular" json:"singular"`
	Workers     int    `mapstructure:"workers" yaml:"workers" json:"workers"`
	DebugDir    string `mapstructure:"debug_dir" yaml:"debug_dir" json:"debug_dir"`
}

// OutputConfig contains output settings.
type OutputConfig struct {
	Format      string `mapstructure:"format" yaml:"format" json:"format"`
	File        string `mapstructure:"file" yaml:"file" json:"file"`
	MetricsFile string `mapstructure:"metrics_file" yaml:"metrics_file" json:"metrics_file"`
}

// BatchConfig contains batch processing settings.
type BatchConfig struct {
	Workers         int      `mapstructure:"workers" yaml:"workers" json:"workers"`
	OutputDir       string   `mapstructure:"output_dir" yaml:"output_dir" json:"output_dir"`
	Suffix          string   `mapstructure:"suffix" yaml:"suffix" json:"suffix"`
	ContinueOnError bool     `mapstructure:"continue_on_error" yaml:"continue_on_error" json:"continue_on_error"`
	Recursive       bool     `mapstructure:"recursive" yaml:"recursive" json:"recursive"`
	Include         []string `mapstructure:"include" yaml:"include" json:"include"`
	Exclude         []string `mapstructure:"exclude" yaml:"exclude" json:"exclude"`
}
