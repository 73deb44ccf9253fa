package cli

import (
	"github.com/spf13/cobra"

	"github.com/clinicpulse/clinicpulse/internal/config"
)

var Version string

// Flag overrides shared by every command
var (
	databaseURLFlag string
	portFlag        string
	clinicNameFlag  string
)

// RootCmd represents the root command
var RootCmd = &cobra.Command{
	Use:   "clinicpulse",
	Short: "Digital presence dashboard for clinics",
	Long: `ClinicPulse - a realtime dashboard for a clinic's digital presence.

ClinicPulse tracks a clinic's listings, website, social and review channels,
pushes live updates to connected dashboards, and raises notifications when
assets need attention or tasks are completed.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: false,
	// Default to serve command if no subcommand provided
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return runServe(cmd, args)
		}
		return cmd.Help()
	},
}

// Execute is called by main
func Execute(version string) error {
	Version = version
	RootCmd.Version = version
	return RootCmd.Execute()
}

// loadConfig resolves configuration with command-line flags taking priority.
func loadConfig() (*config.Config, error) {
	return config.LoadWithOverrides(databaseURLFlag, portFlag, clinicNameFlag)
}

func init() {
	RootCmd.PersistentFlags().StringVar(&databaseURLFlag, "database-url", "", "PostgreSQL connection string (overrides config and DATABASE_URL)")
	RootCmd.PersistentFlags().StringVar(&portFlag, "port", "", "HTTP port (overrides config and PORT)")
	RootCmd.PersistentFlags().StringVar(&clinicNameFlag, "clinic-name", "", "Clinic name shown at the centre of the ecosystem map")

	RootCmd.AddCommand(serveCmd)
	RootCmd.AddCommand(layoutCmd)
	RootCmd.AddCommand(simulateCmd)
	RootCmd.AddCommand(doctorCmd)
	RootCmd.AddCommand(healthcheckCmd)

	setupSelfUpgrade()
}
