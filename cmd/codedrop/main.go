package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/codedrop/relay/pkg/client"
)

var version = "1.0.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "codedrop",
	Short: "Share files through short-lived 8 character codes",
	Long: `codedrop is the command-line client for a codedrop relay.

Upload a file to get a code, hand the code to someone else, and they
can fetch the file for the next 24 hours.

Examples:
  codedrop upload ./report.pdf
  codedrop download AB12CD34 --dir ~/Downloads
  codedrop feedback --rating 5 --message "worked first time"
  codedrop schema --dir ./schema`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(feedbackCmd)
	rootCmd.AddCommand(schemaCmd)

	rootCmd.PersistentFlags().String("server", envOr("CODEDROP_SERVER", "http://localhost:8080"), "Relay base URL")
	rootCmd.PersistentFlags().StringP("output", "o", "text", "Output format: text, json, yaml")
	rootCmd.PersistentFlags().Duration("timeout", 60*time.Second, "Request timeout")
}

func newClient(cmd *cobra.Command) *client.Client {
	server, _ := cmd.Flags().GetString("server")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	return client.NewClient(server, timeout)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
