package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/MeKo-Tech/gridwarp/internal/pgm"
	"github.com/spf13/cobra"
)

type rasterInfo struct {
	File     string `json:"file"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	MaxValue int    `json:"max_value"`
	Min      int    `json:"min"`
	Max      int    `json:"max"`
}

func newInfoCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <file>",
		Short: "Print raster dimensions and sample range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := pgm.LoadAny(args[0])
			if err != nil {
				return err
			}
			info := rasterInfo{File: args[0], Width: r.Width, Height: r.Height, MaxValue: r.MaxValue, Min: r.MaxValue}
			for _, v := range r.Pix {
				info.Min = min(info.Min, v)
				info.Max = max(info.Max, v)
			}

			out := cmd.OutOrStdout()
			if c.config.Output.Format == outputFormatJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			_, err = fmt.Fprintf(out, "%s: %d x %d, max value %d, samples %d..%d\n",
				info.File, info.Width, info.Height, info.MaxValue, info.Min, info.Max)
			return err
		},
	}
	cmd.Flags().StringP("format", "f", outputFormatText, "output format: text, json")
	return cmd
}
