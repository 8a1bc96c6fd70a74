package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joinguard/joinguard"
	"github.com/joinguard/joinguard/internal/cli"
)

var explainChain string

var explainCmd = &cobra.Command{
	Use:   "explain",
	Short: "Print the validation statements for a chain",
	Long:  `Compile a chain file and print every validation statement plus the main query, without touching a database.`,
	Example: `  # Explain a specific chain file
  joinguard explain --chain chains/report.yaml

  # Explain using config file settings
  joinguard explain`,
	RunE: func(cmd *cobra.Command, args []string) error {
		chainPath := resolveString(explainChain, cfg.Chain)
		if chainPath == "" {
			return cli.ChainParseError("no chain file (use --chain or set chain in joinguard.yaml)", nil)
		}

		query, err := cli.LoadChain(chainPath)
		if err != nil {
			return cli.ChainParseError("loading chain", err)
		}
		checks, err := joinguard.Checks(query)
		if err != nil {
			return cli.ChainParseError("compiling chain", err)
		}
		mainSQL, err := query.SQL()
		if err != nil {
			return cli.ChainParseError("compiling chain", err)
		}

		for _, c := range checks {
			fmt.Printf("-- %s\n", c.Loc)
			fmt.Println(c.CountSQL)
			fmt.Println(c.SampleSQL)
			fmt.Println()
		}
		fmt.Println("-- main query")
		fmt.Println(mainSQL)
		return nil
	},
}

func init() {
	explainCmd.Flags().StringVar(&explainChain, "chain", "", "path to chain file")
}
