package cmd

import (
	"fmt"
	"log/slog"

	"github.com/MeKo-Tech/gridwarp/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// flagKeys maps command-line flags to configuration keys. Every command binds the
// flags it defines before the configuration is loaded, so a set flag overrides the
// config file and environment.
var flagKeys = map[string]string{
	"log-level":         "log_level",
	"verbose":           "verbose",
	"reference":         "grid.reference",
	"observed":          "grid.observed",
	"grid-rows":         "grid.rows",
	"grid-cols":         "grid.cols",
	"oob":               "warp.out_of_bounds",
	"fill":              "warp.fill_value",
	"singular":          "warp.singular",
	"warp-workers":      "warp.workers",
	"debug-dir":         "warp.debug_dir",
	"format":            "output.format",
	"metrics-file":      "output.metrics_file",
	"workers":           "batch.workers",
	"output-dir":        "batch.output_dir",
	"suffix":            "batch.suffix",
	"continue-on-error": "batch.continue_on_error",
	"recursive":         "batch.recursive",
	"include":           "batch.include",
	"exclude":           "batch.exclude",
}

// cli carries the state shared by one command tree.
type cli struct {
	cfgFile string
	version string
	viper   *viper.Viper
	config  *config.Config
}

// NewRootCommand builds the gridwarp command tree.
func NewRootCommand(version string) *cobra.Command {
	c := &cli{version: version, viper: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "gridwarp",
		Short: "Grid-based piecewise-bilinear image warping",
		Long: `gridwarp corrects geometric distortion in grayscale rasters.

Two control-point grids describe the distortion: a regular reference grid and the
observed positions of the same points in the distorted raster. Each grid cell gets
its own bilinear mapping, and the observed raster is resampled through the
resulting coordinate field into reference space.

Examples:
  gridwarp warp scan.pgm --reference ref.yaml --observed obs.yaml -o fixed.pgm
  gridwarp warp scan.png --observed obs.yaml --grid-rows 17 --grid-cols 17
  gridwarp batch scans/ --recursive --observed obs.yaml --reference ref.yaml --output-dir out
  gridwarp grid regular --rows 17 --cols 17 --height 512 --width 512 -o ref.yaml`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "gridwarp version %s\n", c.version)
				return nil
			}
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.bindFlags(cmd.Flags()); err != nil {
				return err
			}
			loader := config.NewLoader(c.viper)
			cfg, err := loader.Load(c.cfgFile)
			if err != nil {
				return fmt.Errorf("error loading configuration: %w", err)
			}
			c.config = cfg
			c.setupLogging(cmd)
			if used := loader.ConfigFileUsed(); used != "" {
				slog.Debug("Loaded configuration", "file", used)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&c.cfgFile, "config", "",
		"config file (default is search in ., $HOME, $HOME/.config/gridwarp, /etc/gridwarp)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.Flags().Bool("version", false, "print version information and exit")

	rootCmd.AddCommand(
		newWarpCommand(c),
		newBatchCommand(c),
		newGridCommand(c),
		newInfoCommand(c),
		newConvertCommand(c),
		newConfigCommand(c),
	)
	return rootCmd
}

func (c *cli) bindFlags(flags *pflag.FlagSet) error {
	var err error
	flags.VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || err != nil {
			return
		}
		err = c.viper.BindPFlag(key, f)
	})
	return err
}

// setupLogging installs the JSON slog handler on the command's error stream.
func (c *cli) setupLogging(cmd *cobra.Command) {
	var logLevel slog.Level
	if c.config.Verbose {
		logLevel = slog.LevelDebug
	} else {
		switch c.config.LogLevel {
		case "debug":
			logLevel = slog.LevelDebug
		case "warn":
			logLevel = slog.LevelWarn
		case "error":
			logLevel = slog.LevelError
		default:
			logLevel = slog.LevelInfo
		}
	}

	logger := slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
}

// addWarpFlags defines the flags shared by warp and batch.
func addWarpFlags(cmd *cobra.Command) {
	d := config.DefaultConfig()
	cmd.Flags().String("reference", "", "reference grid table (default: regular lattice sized to the input)")
	cmd.Flags().String("observed", "", "observed grid table")
	cmd.Flags().Int("grid-rows", d.Grid.Rows, "rows of the generated reference lattice")
	cmd.Flags().Int("grid-cols", d.Grid.Cols, "columns of the generated reference lattice")
	cmd.Flags().String("oob", d.Warp.OutOfBounds, "out-of-bounds policy: clamp, fill, skip")
	cmd.Flags().Int("fill", d.Warp.FillValue, "sample written for filled and unmapped pixels")
	cmd.Flags().String("singular", d.Warp.Singular, "singular cell policy: abort, skip")
	cmd.Flags().Int("warp-workers", d.Warp.Workers, "parallel workers per raster (0 = number of CPUs)")
	cmd.Flags().String("debug-dir", "", "directory for source/output comparison images")
	cmd.Flags().String("metrics-file", "", "write Prometheus metrics to this textfile after the run")
}
