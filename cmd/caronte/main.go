package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aussiebroadwan/caronte/internal/app"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "caronte",
	Short: "Client of a Caronte identity server",
	Long: `Serves the session endpoints of an application that delegates
authentication to a Caronte identity server. Configuration is read from
the environment (CARONTE_URL, CARONTE_APP_ID, CARONTE_APP_SECRET, ...).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := app.New(app.LoadConfig())
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		return application.Run()
	},
}

var notifyCmd = &cobra.Command{
	Use:   "notify-client-configuration",
	Short: "Declare the application URL and roles to the identity server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := app.LoadConfig()
		if path, _ := cmd.Flags().GetString("roles"); path != "" {
			cfg.RolesFile = path
		}

		msg, err := app.NotifyClientConfiguration(context.Background(), cfg)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, msg)
		fmt.Fprintln(out, "Notifying Caronte server configuration done!!")
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), app.BuildVersion)
	},
}

func init() {
	notifyCmd.Flags().String("roles", "", "roles file (default: $CARONTE_ROLES_FILE or caronte-roles.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(notifyCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
