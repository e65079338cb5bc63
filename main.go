package main

import (
	"fmt"
	"os"

	"achievement-engine/catalog"

	"github.com/spf13/cobra"
)

const appName = "achievement-engine"

// Set via -ldflags at build time.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   appName,
		Short: "Career achievement engine",
		Long: `achievement-engine awards catalog achievements from tracked career
activity (CVs, interviews, job applications, skills, logins) and keeps
each user's points ledger.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(serveCmd(), catalogCmd(), checkCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s, builtin catalog: %s)\n",
				appName, Version, BuildTime, catalog.DefaultVersion)
		},
	})
	return cmd
}
