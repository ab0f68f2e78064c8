package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleConfig = `{
  "usages": ["discovery_monitoring", "discovery_management"],
  "portfolios": ["default"],
  "producers": {
    "prod-*": ["discovery_monitoring", "discovery_management"]
  },
  "consumers": {
    "consumer-a": ["discovery_monitoring"],
    "bms-*": ["discovery_monitoring", "discovery_management"]
  },
  "tags": [
    { "id": "location", "name": "Location", "description": "Physical site",
      "access": { "consumer-a": "r", "prod-*": "crud" } }
  ]
}`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "configuration.json")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return p
}

func TestIsProducerAndConsumer(t *testing.T) {
	c, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !c.IsProducer("prod-01") {
		t.Errorf("expected prod-01 to be a producer")
	}
	if c.IsProducer("consumer-a") {
		t.Errorf("did not expect consumer-a to be a producer")
	}
	if !c.IsConsumer("consumer-a") {
		t.Errorf("expected consumer-a to be a consumer")
	}
	if !c.IsConsumer("bms-07") {
		t.Errorf("expected bms-07 to match the bms-* consumer pattern")
	}
	if c.IsConsumer("unknown-client") {
		t.Errorf("did not expect unknown-client to match any consumer pattern")
	}
}

func TestGrantedUsagesUnion(t *testing.T) {
	c, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	granted := c.GrantedUsages("bms-07", Consumer)
	if _, ok := granted["discovery_monitoring"]; !ok {
		t.Errorf("expected discovery_monitoring to be granted")
	}
	if _, ok := granted["discovery_management"]; !ok {
		t.Errorf("expected discovery_management to be granted")
	}

	onlyMonitoring := c.GrantedUsages("consumer-a", Consumer)
	if len(onlyMonitoring) != 1 {
		t.Fatalf("expected exactly one granted usage, got %v", onlyMonitoring)
	}
}

func TestTagAccess(t *testing.T) {
	c, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !c.TagAccess("consumer-a", "location", "r") {
		t.Errorf("expected consumer-a to have read access on location")
	}
	if c.TagAccess("consumer-a", "location", "c") {
		t.Errorf("did not expect consumer-a to have create access on location")
	}
	if !c.TagAccess("prod-01", "location", "u") {
		t.Errorf("expected prod-01 to have update access on location (crud)")
	}
	if c.TagAccess("consumer-a", "nonexistent-tag", "r") {
		t.Errorf("expected default-deny for an unknown tag")
	}
}

func TestListTags(t *testing.T) {
	c, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	readable := c.ListTags("consumer-a", "r")
	if len(readable) != 1 || readable[0].ID != "location" {
		t.Fatalf("unexpected readable tags: %v", readable)
	}

	editable := c.ListTags("consumer-a", "c")
	if len(editable) != 0 {
		t.Fatalf("expected no editable tags for consumer-a, got %v", editable)
	}
}

func TestReloadPicksUpChanges(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.IsProducer("new-prod-1") {
		t.Fatalf("new-prod-1 should not yet be a producer")
	}

	updated := `{"usages":[],"portfolios":[],"producers":{"new-prod-*":[]},"consumers":{},"tags":[]}`
	if err := os.WriteFile(path, []byte(updated), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := c.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	if !c.IsProducer("new-prod-1") {
		t.Errorf("expected new-prod-1 to be a producer after reload")
	}
	if c.IsProducer("prod-01") {
		t.Errorf("expected the old producer pattern to be gone after reload")
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	_, err := Load(writeConfig(t, "{not valid json"))
	if err == nil {
		t.Fatalf("expected an error for malformed JSON")
	}
}

func TestKnownUsageAndPortfolio(t *testing.T) {
	c, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !c.IsKnownUsage("discovery_monitoring") {
		t.Errorf("expected discovery_monitoring to be known")
	}
	if c.IsKnownUsage("made_up_usage") {
		t.Errorf("did not expect made_up_usage to be known")
	}
	if !c.IsKnownPortfolio("default") {
		t.Errorf("expected default portfolio to be known")
	}
}
