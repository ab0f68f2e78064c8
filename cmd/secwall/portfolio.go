package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Inspect portfolios and the usages granted to a client",
}

var portfolioListCmd = &cobra.Command{
	Use:   "list",
	Short: "List declared portfolio names",
	RunE: func(cmd *cobra.Command, args []string) error {
		clientID, _ := cmd.Flags().GetString("client-id")
		acc, err := producerAccessor(cmd, clientID)
		if err != nil {
			return err
		}
		names, err := acc.ListPortfolios()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println("No portfolios declared")
			return nil
		}
		fmt.Println(strings.Join(names, "\n"))
		return nil
	},
}

var portfolioUsagesCmd = &cobra.Command{
	Use:   "usages",
	Short: "List the usages granted to --client-id",
	RunE: func(cmd *cobra.Command, args []string) error {
		clientID, _ := cmd.Flags().GetString("client-id")
		asConsumer, _ := cmd.Flags().GetBool("consumer")

		var usages []string
		var err error
		if asConsumer {
			acc, aerr := consumerAccessor(cmd, clientID)
			if aerr != nil {
				return aerr
			}
			usages, err = acc.Usages()
		} else {
			acc, aerr := producerAccessor(cmd, clientID)
			if aerr != nil {
				return aerr
			}
			usages, err = acc.Usages()
		}
		if err != nil {
			return err
		}
		if len(usages) == 0 {
			fmt.Println("No usages granted")
			return nil
		}
		fmt.Println(strings.Join(usages, "\n"))
		return nil
	},
}

func init() {
	portfolioCmd.PersistentFlags().String("client-id", "", "Client id to evaluate the ACL as (required)")
	_ = portfolioCmd.MarkPersistentFlagRequired("client-id")
	portfolioUsagesCmd.Flags().Bool("consumer", false, "Evaluate as a consumer instead of a producer")

	portfolioCmd.AddCommand(portfolioListCmd)
	portfolioCmd.AddCommand(portfolioUsagesCmd)
}
