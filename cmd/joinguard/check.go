package main

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/joinguard/joinguard"
	"github.com/joinguard/joinguard/internal/cli"
)

var (
	checkChain string
	checkDB    string
	checkSkip  bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate and run a chain against a database",
	Long: `Run the chain's validation statements against a live database and, if they
all pass, execute the main query. The first violated constraint stops the run
and is reported with a sample of offending rows.`,
	Example: `  # Check against an explicit database
  joinguard check --chain chains/report.yaml --db postgres://localhost/warehouse

  # Skip validation (issues only the main query)
  joinguard check --chain chains/report.yaml --skip-validation`,
	RunE: func(cmd *cobra.Command, args []string) error {
		chainPath := resolveString(checkChain, cfg.Chain)
		if chainPath == "" {
			return cli.ChainParseError("no chain file (use --chain or set chain in joinguard.yaml)", nil)
		}
		dbURL := resolveString(checkDB, cfg.DatabaseURL())
		if dbURL == "" {
			return cli.ConfigError("no database (use --db, DATABASE_URL, or joinguard.yaml)", nil)
		}

		query, err := cli.LoadChain(chainPath)
		if err != nil {
			return cli.ChainParseError("loading chain", err)
		}

		db, err := sql.Open("postgres", dbURL)
		if err != nil {
			return cli.DBConnectError("opening database", err)
		}
		defer db.Close()
		ctx := cmd.Context()
		if err := db.PingContext(ctx); err != nil {
			return cli.DBConnectError("connecting to database", err)
		}

		var opts []joinguard.Option
		if checkSkip || cfg.Check.SkipValidation {
			opts = append(opts, joinguard.SkipValidation())
		}
		res, err := joinguard.Execute(ctx, joinguard.NewDB(db), query, opts...)
		if err != nil {
			return cli.GeneralError("executing chain", err)
		}

		switch res.Status {
		case joinguard.OK, joinguard.NotValidated:
			if !quiet {
				fmt.Printf("%s: %d row(s)\n", res.Status, len(res.Value))
			}
			return nil
		case joinguard.ValidationError:
			fmt.Printf("%s at %s\n", res.Status, res.ErrorLoc)
			fmt.Println(res.ErrorMsg)
			if !quiet {
				fmt.Printf("%d violation(s), sample of %d:\n", res.ErrorSize, len(res.ErrorSample))
				for _, row := range res.ErrorSample {
					fmt.Printf("  %v\n", row)
				}
			}
			return cli.ValidationError("validation failed")
		default: // SQLError
			return cli.GeneralError("database error: "+res.ErrorMsg, nil)
		}
	},
}

func init() {
	checkCmd.Flags().StringVar(&checkChain, "chain", "", "path to chain file")
	checkCmd.Flags().StringVar(&checkDB, "db", "", "database URL")
	checkCmd.Flags().BoolVar(&checkSkip, "skip-validation", false, "run only the main query")
}
