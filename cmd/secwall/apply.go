package main

import (
	"fmt"
	"os"

	"github.com/cuemby/secwall/pkg/document"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply a document definition from a YAML file",
	Long: `Apply creates or updates a document from a YAML resource file.

Example:
  secwall apply -f snmp-reader.yaml --client-id prod-a`,
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringP("file", "f", "", "YAML file to apply (required)")
	applyCmd.Flags().String("client-id", "", "Producer client id to apply as (required)")
	_ = applyCmd.MarkFlagRequired("file")
	_ = applyCmd.MarkFlagRequired("client-id")
}

// DocumentResource is the YAML shape a producer hands to apply: enough
// to build one document.Document and place it in one portfolio.
type DocumentResource struct {
	APIVersion string           `yaml:"apiVersion"`
	Kind       string           `yaml:"kind"`
	Metadata   ResourceMetadata `yaml:"metadata"`
	Spec       DocumentSpec     `yaml:"spec"`
}

type ResourceMetadata struct {
	Name      string `yaml:"name"`
	Portfolio string `yaml:"portfolio"`
}

type DocumentSpec struct {
	Type    string                 `yaml:"type"`
	Usages  []string               `yaml:"usages"`
	Tags    []string               `yaml:"tags"`
	Public  map[string]interface{} `yaml:"public"`
	Private map[string]interface{} `yaml:"private"`
}

func runApply(cmd *cobra.Command, args []string) error {
	filename, _ := cmd.Flags().GetString("file")
	clientID, _ := cmd.Flags().GetString("client-id")

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filename, err)
	}

	var resource DocumentResource
	if err := yaml.Unmarshal(data, &resource); err != nil {
		return fmt.Errorf("parsing %s: %w", filename, err)
	}

	switch resource.Kind {
	case "Document":
		return applyDocument(cmd, clientID, &resource)
	default:
		return fmt.Errorf("unsupported resource kind: %s", resource.Kind)
	}
}

func applyDocument(cmd *cobra.Command, clientID string, resource *DocumentResource) error {
	if resource.Metadata.Portfolio == "" {
		return fmt.Errorf("metadata.portfolio is required")
	}

	acc, err := producerAccessor(cmd, clientID)
	if err != nil {
		return err
	}

	existing, _ := acc.GetWithoutSecretByName(resource.Metadata.Portfolio, resource.Metadata.Name)

	d, err := buildDocument(
		resource.Spec.Type,
		"",
		resource.Metadata.Name,
		resource.Spec.Usages,
		resource.Spec.Tags,
		document.Fields(resource.Spec.Public),
		document.Fields(resource.Spec.Private),
		len(resource.Spec.Private) > 0,
	)
	if err != nil {
		return err
	}

	if existing != nil {
		d.SetID(existing.ID())
		fmt.Printf("Updating document: %s\n", resource.Metadata.Name)
		if err := acc.Update(resource.Metadata.Portfolio, d); err != nil {
			return fmt.Errorf("updating document: %w", err)
		}
		fmt.Printf("Document updated: %s\n", existing.ID())
		return nil
	}

	fmt.Printf("Creating document: %s\n", resource.Metadata.Name)
	id, err := acc.Create(resource.Metadata.Portfolio, d)
	if err != nil {
		return fmt.Errorf("creating document: %w", err)
	}
	fmt.Printf("Document created: %s\n", id)
	return nil
}
