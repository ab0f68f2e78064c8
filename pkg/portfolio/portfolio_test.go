package portfolio

import (
	"testing"

	"github.com/cuemby/secwall/pkg/document"
)

func newCred(t *testing.T, name, username, password string) *document.UserAndPassword {
	t.Helper()
	d := document.NewUserAndPassword()
	d.SetName(name)
	d.Username = username
	d.Password = password
	return d
}

func TestInsertAssignsIDAndEnforcesNameUniqueness(t *testing.T) {
	p := New("default", nil)

	id, err := p.Insert(newCred(t, "svc-a", "alice", "pw1"), nil)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if id == "" {
		t.Fatalf("expected an assigned id")
	}

	_, err = p.Insert(newCred(t, "svc-a", "bob", "pw2"), nil)
	if _, ok := err.(*NameAlreadyExistsError); !ok {
		t.Fatalf("expected *NameAlreadyExistsError, got %v", err)
	}
}

func TestInsertRejectsInvalidDocument(t *testing.T) {
	p := New("default", nil)
	d := document.NewUserAndPassword()
	d.SetName("svc-a")
	// Username left empty: fails Validate.
	_, err := p.Insert(d, nil)
	if _, ok := err.(*document.ValidationError); !ok {
		t.Fatalf("expected *document.ValidationError, got %v", err)
	}
}

func TestGetByIDAndByName(t *testing.T) {
	p := New("default", nil)
	id, err := p.Insert(newCred(t, "svc-a", "alice", "pw1"), nil)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	byID, err := p.GetByID(id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	byName, err := p.GetByName("svc-a")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if !byID.EqualsPublic(byName) || !byID.EqualsPrivate(byName) {
		t.Fatalf("GetByID and GetByName returned diverging documents")
	}

	if _, err := p.GetByID("missing"); err == nil {
		t.Fatalf("expected an error for a missing id")
	}
}

func TestUpdatePreservesSecretWhenIncomingHasNone(t *testing.T) {
	p := New("default", nil)
	id, err := p.Insert(newCred(t, "svc-a", "alice", "secret-pw"), nil)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	incoming := document.NewUserAndPassword()
	incoming.SetID(id)
	incoming.SetName("svc-a-renamed")
	incoming.Username = "alice2"
	incoming.SetContainsPrivate(false) // producer edit: no secret in the wire payload

	res, err := p.Update(incoming, nil)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !res.NonSecretChanged {
		t.Fatalf("expected NonSecretChanged")
	}
	if res.SecretChanged {
		t.Fatalf("did not expect SecretChanged: incoming had no private part")
	}

	stored, err := p.GetByID(id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	up := stored.(*document.UserAndPassword)
	if up.Username != "alice2" {
		t.Fatalf("expected username to be updated, got %q", up.Username)
	}
	if up.Password != "secret-pw" {
		t.Fatalf("expected password to be preserved, got %q", up.Password)
	}
}

func TestUpdateWithSecretReplacesIt(t *testing.T) {
	p := New("default", nil)
	id, err := p.Insert(newCred(t, "svc-a", "alice", "old-pw"), nil)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	incoming := newCred(t, "svc-a", "alice", "new-pw")
	incoming.SetID(id)

	res, err := p.Update(incoming, nil)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !res.SecretChanged {
		t.Fatalf("expected SecretChanged")
	}

	stored, _ := p.GetByID(id)
	if stored.(*document.UserAndPassword).Password != "new-pw" {
		t.Fatalf("expected password to be replaced")
	}
}

func TestUpdateRejectsTypeChange(t *testing.T) {
	p := New("default", nil)
	id, _ := p.Insert(newCred(t, "svc-a", "alice", "pw"), nil)

	other := document.NewSnmpv1()
	other.SetID(id)
	other.SetName("svc-a")
	other.Community = "public"

	_, err := p.Update(other, nil)
	if _, ok := err.(*IllegalActionError); !ok {
		t.Fatalf("expected *IllegalActionError, got %v", err)
	}
}

func TestUpdateRejectsNameCollisionWithAnotherDocument(t *testing.T) {
	p := New("default", nil)
	_, err := p.Insert(newCred(t, "svc-a", "alice", "pw1"), nil)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	idB, err := p.Insert(newCred(t, "svc-b", "bob", "pw2"), nil)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	incoming := newCred(t, "svc-a", "bob", "pw2")
	incoming.SetID(idB)

	_, err = p.Update(incoming, nil)
	if _, ok := err.(*NameAlreadyExistsError); !ok {
		t.Fatalf("expected *NameAlreadyExistsError, got %v", err)
	}
}

func TestUpdateMissingDocument(t *testing.T) {
	p := New("default", nil)
	d := newCred(t, "svc-a", "alice", "pw")
	d.SetID("does-not-exist")
	_, err := p.Update(d, nil)
	if _, ok := err.(*DocumentDoNotExistError); !ok {
		t.Fatalf("expected *DocumentDoNotExistError, got %v", err)
	}
}

func TestRemove(t *testing.T) {
	p := New("default", nil)
	id, _ := p.Insert(newCred(t, "svc-a", "alice", "pw"), nil)

	removed, err := p.Remove(id)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if removed.Name() != "svc-a" {
		t.Fatalf("unexpected removed document: %v", removed)
	}
	if _, err := p.GetByID(id); err == nil {
		t.Fatalf("expected document to be gone after Remove")
	}
	if _, err := p.Remove(id); err == nil {
		t.Fatalf("expected an error removing an already-removed id")
	}
}

func TestGetAllReturnsIndependentClones(t *testing.T) {
	p := New("default", nil)
	id, _ := p.Insert(newCred(t, "svc-a", "alice", "pw"), nil)

	all := p.GetAll()
	if len(all) != 1 {
		t.Fatalf("expected 1 document, got %d", len(all))
	}
	all[0].(*document.UserAndPassword).Username = "mutated"

	stored, _ := p.GetByID(id)
	if stored.(*document.UserAndPassword).Username == "mutated" {
		t.Fatalf("GetAll leaked a shared reference to stored state")
	}
}

func TestNewBuildsIndicesFromExistingDocuments(t *testing.T) {
	d := newCred(t, "svc-a", "alice", "pw")
	d.SetID("fixed-id")
	p := New("default", []document.Document{d})

	got, err := p.GetByID("fixed-id")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name() != "svc-a" {
		t.Fatalf("unexpected document loaded via New: %v", got)
	}
}
