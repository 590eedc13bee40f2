package main

import (
	"os"

	"github.com/MeKo-Tech/gridwarp/cmd/gridwarp/cmd"
	"github.com/MeKo-Tech/gridwarp/internal/version"
)

func main() {
	if err := cmd.NewRootCommand(version.String()).Execute(); err != nil {
		os.Exit(1)
	}
}
