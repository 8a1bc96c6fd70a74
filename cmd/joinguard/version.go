package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// version is set via -ldflags at release time; a module build stamps itself.
var version = ""

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the joinguard version",
	Run: func(cmd *cobra.Command, args []string) {
		v := version
		if v == "" {
			if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
				v = info.Main.Version
			} else {
				v = "(devel)"
			}
		}
		fmt.Println("joinguard", v)
	},
}
