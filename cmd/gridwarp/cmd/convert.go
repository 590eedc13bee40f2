package cmd

import (
	"fmt"

	"github.com/MeKo-Tech/gridwarp/internal/pgm"
	"github.com/spf13/cobra"
)

func newConvertCommand(_ *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <input> <output>",
		Short: "Convert between PGM and common image formats",
		Long: `Convert a raster between PGM (P5) and PNG, JPEG, BMP, TIFF or GIF. The format is
chosen by file extension; colour inputs become 8-bit grayscale.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !pgm.IsSupported(args[1]) {
				return fmt.Errorf("unsupported output format: %s", args[1])
			}
			r, err := pgm.LoadAny(args[0])
			if err != nil {
				return err
			}
			return pgm.SaveAny(args[1], r)
		},
	}
}
