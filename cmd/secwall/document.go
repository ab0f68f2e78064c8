package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cuemby/secwall/pkg/document"
	"github.com/spf13/cobra"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Create, read, update and delete documents in a portfolio",
}

var documentListCmd = &cobra.Command{
	Use:   "list PORTFOLIO",
	Short: "List documents in a portfolio, redacted unless --secret is set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		portfolioName := args[0]
		clientID, _ := cmd.Flags().GetString("client-id")
		usage, _ := cmd.Flags().GetString("usage")
		secret, _ := cmd.Flags().GetBool("secret")

		var docs []document.Document
		var err error
		if secret {
			acc, aerr := consumerAccessor(cmd, clientID)
			if aerr != nil {
				return aerr
			}
			docs, err = acc.ListWithSecret(portfolioName, usage)
		} else {
			acc, aerr := producerAccessor(cmd, clientID)
			if aerr != nil {
				return aerr
			}
			docs, err = acc.ListWithoutSecret(portfolioName, usage)
		}
		if err != nil {
			return err
		}
		for _, d := range docs {
			printDocumentSummary(d)
		}
		return nil
	},
}

var documentGetCmd = &cobra.Command{
	Use:   "get PORTFOLIO ID",
	Short: "Fetch a single document by id, redacted unless --secret is set",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		portfolioName, id := args[0], args[1]
		clientID, _ := cmd.Flags().GetString("client-id")
		secret, _ := cmd.Flags().GetBool("secret")

		var d document.Document
		var err error
		if secret {
			acc, aerr := consumerAccessor(cmd, clientID)
			if aerr != nil {
				return aerr
			}
			d, err = acc.GetWithSecret(portfolioName, id)
		} else {
			acc, aerr := producerAccessor(cmd, clientID)
			if aerr != nil {
				return aerr
			}
			d, err = acc.GetWithoutSecret(portfolioName, id)
		}
		if err != nil {
			return err
		}
		return printDocumentFull(d)
	},
}

var documentCreateCmd = &cobra.Command{
	Use:   "create PORTFOLIO",
	Short: "Create a document from --type/--name/--usages/--tags/--public/--private",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		portfolioName := args[0]
		clientID, _ := cmd.Flags().GetString("client-id")

		d, err := buildDocumentFromFlags(cmd, "")
		if err != nil {
			return err
		}

		acc, err := producerAccessor(cmd, clientID)
		if err != nil {
			return err
		}
		id, err := acc.Create(portfolioName, d)
		if err != nil {
			return err
		}
		fmt.Printf("Document created: %s\n", id)
		return nil
	},
}

var documentUpdateCmd = &cobra.Command{
	Use:   "update PORTFOLIO ID",
	Short: "Update an existing document's name/tags/usages/public/private fields",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		portfolioName, id := args[0], args[1]
		clientID, _ := cmd.Flags().GetString("client-id")

		d, err := buildDocumentFromFlags(cmd, id)
		if err != nil {
			return err
		}

		acc, err := producerAccessor(cmd, clientID)
		if err != nil {
			return err
		}
		if err := acc.Update(portfolioName, d); err != nil {
			return err
		}
		fmt.Printf("Document updated: %s\n", id)
		return nil
	},
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete PORTFOLIO ID",
	Short: "Delete a document",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		portfolioName, id := args[0], args[1]
		clientID, _ := cmd.Flags().GetString("client-id")

		acc, err := producerAccessor(cmd, clientID)
		if err != nil {
			return err
		}
		if err := acc.Delete(portfolioName, id); err != nil {
			return err
		}
		fmt.Printf("Document deleted: %s\n", id)
		return nil
	},
}

func init() {
	documentCmd.PersistentFlags().String("client-id", "", "Client id to evaluate the ACL as (required)")
	_ = documentCmd.MarkPersistentFlagRequired("client-id")

	documentListCmd.Flags().String("usage", "", "Filter by usage id (default: every usage --client-id is granted)")
	documentListCmd.Flags().Bool("secret", false, "Fetch the unredacted form, as a consumer")
	documentGetCmd.Flags().Bool("secret", false, "Fetch the unredacted form, as a consumer")

	documentCreateCmd.Flags().String("type", "", "Document type (required)")
	documentCreateCmd.Flags().String("name", "", "Document name (required)")
	documentCreateCmd.Flags().StringSlice("usages", nil, "Comma-separated usage ids")
	documentCreateCmd.Flags().StringSlice("tags", nil, "Comma-separated tag ids")
	documentCreateCmd.Flags().String("public", "{}", "JSON object of public fields")
	documentCreateCmd.Flags().String("private", "", "JSON object of private fields (omit for a document with no secret)")
	_ = documentCreateCmd.MarkFlagRequired("type")
	_ = documentCreateCmd.MarkFlagRequired("name")

	documentUpdateCmd.Flags().String("type", "", "Document type (required)")
	documentUpdateCmd.Flags().String("name", "", "Document name (required)")
	documentUpdateCmd.Flags().StringSlice("usages", nil, "Comma-separated usage ids")
	documentUpdateCmd.Flags().StringSlice("tags", nil, "Comma-separated tag ids")
	documentUpdateCmd.Flags().String("public", "{}", "JSON object of public fields")
	documentUpdateCmd.Flags().String("private", "", "JSON object of private fields (omit to leave the stored secret untouched)")
	_ = documentUpdateCmd.MarkFlagRequired("type")
	_ = documentUpdateCmd.MarkFlagRequired("name")

	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentCreateCmd)
	documentCmd.AddCommand(documentUpdateCmd)
	documentCmd.AddCommand(documentDeleteCmd)
}

// buildDocumentFromFlags assembles a document.Document from the
// --type/--name/--usages/--tags/--public/--private flags shared by
// document create and document update. id is set on the result when
// non-empty (the update path carries the target id through).
func buildDocumentFromFlags(cmd *cobra.Command, id string) (document.Document, error) {
	typ, _ := cmd.Flags().GetString("type")
	name, _ := cmd.Flags().GetString("name")
	usages, _ := cmd.Flags().GetStringSlice("usages")
	tags, _ := cmd.Flags().GetStringSlice("tags")
	publicJSON, _ := cmd.Flags().GetString("public")
	privateJSON, _ := cmd.Flags().GetString("private")

	var public document.Fields
	if err := json.Unmarshal([]byte(publicJSON), &public); err != nil {
		return nil, fmt.Errorf("parsing --public: %w", err)
	}
	var private document.Fields
	hasPrivate := strings.TrimSpace(privateJSON) != ""
	if hasPrivate {
		if err := json.Unmarshal([]byte(privateJSON), &private); err != nil {
			return nil, fmt.Errorf("parsing --private: %w", err)
		}
	}

	return buildDocument(typ, id, name, usages, tags, public, private, hasPrivate)
}

// buildDocument is the core document assembly shared by the CLI's
// flag-driven create/update commands and the YAML-driven apply command.
func buildDocument(typ, id, name string, usages, tags []string, public, private document.Fields, hasPrivate bool) (document.Document, error) {
	d, err := document.New(typ)
	if err != nil {
		return nil, err
	}
	if id != "" {
		d.SetID(id)
	}
	d.SetName(name)
	d.SetUsages(usages)
	d.SetTags(tags)

	if err := d.UpdateFromPublic(public); err != nil {
		return nil, fmt.Errorf("invalid public fields: %w", err)
	}

	if hasPrivate {
		d.SetContainsPrivate(true)
		if err := d.UpdateFromPrivate(private); err != nil {
			return nil, fmt.Errorf("invalid private fields: %w", err)
		}
	} else {
		d.SetContainsPrivate(false)
	}

	return d, nil
}

func printDocumentSummary(d document.Document) {
	fmt.Printf("%-36s %-24s %-20s %s\n", d.ID(), d.Name(), d.Type(), strings.Join(d.Usages(), ","))
}

func printDocumentFull(d document.Document) error {
	fmt.Printf("ID:       %s\n", d.ID())
	fmt.Printf("Name:     %s\n", d.Name())
	fmt.Printf("Type:     %s\n", d.Type())
	fmt.Printf("Tags:     %s\n", strings.Join(d.Tags(), ","))
	fmt.Printf("Usages:   %s\n", strings.Join(d.Usages(), ","))

	pub, err := json.MarshalIndent(d.SerializePublic(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Printf("Public:   %s\n", pub)

	if d.ContainsPrivate() {
		priv, err := json.MarshalIndent(d.SerializePrivate(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Printf("Private:  %s\n", priv)
	}
	return nil
}
