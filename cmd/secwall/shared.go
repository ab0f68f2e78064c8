package main

import (
	"fmt"

	"github.com/cuemby/secwall/pkg/client"
	"github.com/cuemby/secwall/pkg/config"
	"github.com/cuemby/secwall/pkg/notify"
	"github.com/cuemby/secwall/pkg/security"
	"github.com/cuemby/secwall/pkg/wallet"
	"github.com/spf13/cobra"
)

// openWallet loads the configuration and database named by the
// --config/--db-path persistent flags and builds a Wallet against them.
// Every CLI subcommand that touches documents goes through this, since
// secwall ships no remote transport (spec.md scopes that to a separate
// client/server collaborator): the CLI is itself an in-process client.
func openWallet(cmd *cobra.Command) (*wallet.Wallet, *config.Configuration, error) {
	configPath, _ := cmd.Flags().GetString("config")
	dbPath, _ := cmd.Flags().GetString("db-path")

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}

	w, err := wallet.New(cfg, dbPath, security.NewValidator(), notify.NewBroker())
	if err != nil {
		return nil, nil, fmt.Errorf("opening wallet database: %w", err)
	}
	return w, cfg, nil
}

func producerAccessor(cmd *cobra.Command, clientID string) (*client.ProducerAccessor, error) {
	w, _, err := openWallet(cmd)
	if err != nil {
		return nil, err
	}
	return client.NewProducerAccessor(clientID, w), nil
}

func consumerAccessor(cmd *cobra.Command, clientID string) (*client.ConsumerAccessor, error) {
	w, _, err := openWallet(cmd)
	if err != nil {
		return nil, err
	}
	return client.NewConsumerAccessor(clientID, w), nil
}
