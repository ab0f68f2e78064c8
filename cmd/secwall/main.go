package main

import (
	"fmt"
	"os"

	"github.com/cuemby/secwall/pkg/log"
	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "secwall",
	Short: "secwall - a usage-scoped credential wallet",
	Long: `secwall stores Snmpv1/Snmpv3/UserAndPassword/LoginAndToken/TokenAndLogin/
SshKeyAndLogin/ExternalCertificate/InternalCertificate documents in named
portfolios and enforces a usage-based ACL between producers and consumers.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("secwall version %s\nCommit: %s\n", Version, Commit))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().String("config", "/etc/secwall/secwall.json", "Path to the ACL configuration file")
	rootCmd.PersistentFlags().String("db-path", "/var/lib/secwall/secwall.db", "Path to the wallet database file")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(portfolioCmd)
	rootCmd.AddCommand(documentCmd)
	rootCmd.AddCommand(applyCmd)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}
