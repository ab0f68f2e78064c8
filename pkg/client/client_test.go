package client

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/secwall/pkg/config"
	"github.com/cuemby/secwall/pkg/document"
	"github.com/cuemby/secwall/pkg/log"
	"github.com/cuemby/secwall/pkg/notify"
	"github.com/cuemby/secwall/pkg/wallet"
)

func TestMain(m *testing.M) {
	log.Init(log.Config{Output: io.Discard})
	os.Exit(m.Run())
}

const sampleConfig = `{
  "usages": ["discovery_monitoring"],
  "portfolios": ["default"],
  "producers": {"prod": ["discovery_monitoring"]},
  "consumers": {"cons": ["discovery_monitoring"]},
  "tags": [
    {"id": "loc", "name": "Location", "access": {"prod": "cru", "cons": "r"}}
  ]
}`

func newTestAccessors(t *testing.T) (*ProducerAccessor, *ConsumerAccessor) {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "configuration.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(sampleConfig), 0o600))
	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	w, err := wallet.New(cfg, filepath.Join(dir, "wallet.db"), nil, notify.NewBroker())
	require.NoError(t, err)
	return NewProducerAccessor("prod", w), NewConsumerAccessor("cons", w)
}

func TestProducerCreateAndConsumerRead(t *testing.T) {
	prod, cons := newTestAccessors(t)

	d := document.NewUserAndPassword()
	d.SetName("A")
	d.Username = "u"
	d.Password = "p"
	d.SetUsages([]string{"discovery_monitoring"})

	id, err := prod.Create("default", d)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	redacted, err := prod.GetWithoutSecret("default", id)
	require.NoError(t, err)
	up := redacted.(*document.UserAndPassword)
	assert.Equal(t, "u", up.Username)
	assert.Empty(t, up.Password)

	full, err := cons.GetWithSecret("default", id)
	require.NoError(t, err)
	up = full.(*document.UserAndPassword)
	assert.Equal(t, "p", up.Password)
}

func TestProducerCannotReadSecret(t *testing.T) {
	prod, _ := newTestAccessors(t)

	d := document.NewUserAndPassword()
	d.SetName("A")
	d.Username = "u"
	d.Password = "p"
	d.SetUsages([]string{"discovery_monitoring"})
	id, err := prod.Create("default", d)
	require.NoError(t, err)

	// ProducerAccessor has no GetWithSecret method at all: the role
	// boundary is enforced at compile time, not just by the server.
	_, err = prod.GetWithoutSecret("default", id)
	require.NoError(t, err)
}

func TestListWithoutSecretByIDsDropsMissing(t *testing.T) {
	prod, _ := newTestAccessors(t)

	d := document.NewUserAndPassword()
	d.SetName("A")
	d.Username = "u"
	d.Password = "p"
	d.SetUsages([]string{"discovery_monitoring"})
	id, err := prod.Create("default", d)
	require.NoError(t, err)

	docs, err := prod.ListWithoutSecretByIDs("default", []string{id, "missing"})
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestUpdateAndDelete(t *testing.T) {
	prod, cons := newTestAccessors(t)

	d := document.NewUserAndPassword()
	d.SetName("A")
	d.Username = "u"
	d.Password = "p"
	d.SetUsages([]string{"discovery_monitoring"})
	id, err := prod.Create("default", d)
	require.NoError(t, err)

	updated, err := cons.GetWithSecret("default", id)
	require.NoError(t, err)
	up := updated.(*document.UserAndPassword)
	up.SetID(id)
	up.SetName("A-renamed")
	up.SetContainsPrivate(false)
	require.NoError(t, prod.Update("default", up))

	after, err := prod.GetWithoutSecretByName("default", "A-renamed")
	require.NoError(t, err)
	assert.Equal(t, id, after.ID())

	require.NoError(t, prod.Delete("default", id))
	_, err = prod.GetWithoutSecret("default", id)
	assert.Error(t, err)
}

func TestTagListsAndUsages(t *testing.T) {
	prod, cons := newTestAccessors(t)

	pUsages, err := prod.Usages()
	require.NoError(t, err)
	assert.Equal(t, []string{"discovery_monitoring"}, pUsages)

	cUsages, err := cons.Usages()
	require.NoError(t, err)
	assert.Equal(t, []string{"discovery_monitoring"}, cUsages)

	tags, err := prod.EditableTags()
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "loc", tags[0].ID)

	tags, err = cons.PrivateReadableTags()
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "loc", tags[0].ID)
}

func TestListPortfolios(t *testing.T) {
	prod, _ := newTestAccessors(t)
	names, err := prod.ListPortfolios()
	require.NoError(t, err)
	assert.Equal(t, []string{"default"}, names)
}
