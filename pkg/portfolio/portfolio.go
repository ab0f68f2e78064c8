package portfolio

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/cuemby/secwall/pkg/document"
)

// NameAlreadyExistsError reports that a portfolio already holds a document
// with the given name.
type NameAlreadyExistsError struct {
	Name string
}

func (e *NameAlreadyExistsError) Error() string {
	return fmt.Sprintf("a document named %q already exists in this portfolio", e.Name)
}

// DocumentDoNotExistError reports that no document with the given id is
// held by the portfolio.
type DocumentDoNotExistError struct {
	ID string
}

func (e *DocumentDoNotExistError) Error() string {
	return fmt.Sprintf("no document with id %q exists in this portfolio", e.ID)
}

// IllegalActionError reports an action the portfolio refuses on structural
// grounds: an unsupported document type, or a type change on update.
type IllegalActionError struct {
	Reason string
}

func (e *IllegalActionError) Error() string { return e.Reason }

// UpdateResult carries what changed, for the caller (the wallet core) to
// build a notification from.
type UpdateResult struct {
	Old              document.Document
	New              document.Document
	NonSecretChanged bool
	SecretChanged    bool
}

// Portfolio is a named, insertion-ordered collection of documents. Every
// method here assumes the caller already holds whatever lock protects
// concurrent access (pkg/wallet's single reader-writer lock); Portfolio
// itself does no locking, mirroring how fsm.go in the teacher repo leaves
// locking to its caller.
type Portfolio struct {
	name string

	docs   []document.Document
	byID   map[string]int
	byName map[string]int
}

// New builds a Portfolio already holding docs, in the given order. Used by
// pkg/storage when loading a database file: the caller is responsible for
// having already dropped any document that fails Validate.
func New(name string, docs []document.Document) *Portfolio {
	p := &Portfolio{
		name:   name,
		docs:   make([]document.Document, 0, len(docs)),
		byID:   make(map[string]int, len(docs)),
		byName: make(map[string]int, len(docs)),
	}
	for _, d := range docs {
		p.appendLocked(d)
	}
	return p
}

func (p *Portfolio) Name() string { return p.name }

func (p *Portfolio) appendLocked(d document.Document) {
	p.byID[d.ID()] = len(p.docs)
	p.byName[d.Name()] = len(p.docs)
	p.docs = append(p.docs, d)
}

// GetAll returns clones of every document, private fields intact.
// Redaction is the caller's responsibility (spec.md §4.2).
func (p *Portfolio) GetAll() []document.Document {
	out := make([]document.Document, len(p.docs))
	for i, d := range p.docs {
		out[i] = d.Clone()
	}
	return out
}

func (p *Portfolio) GetByID(id string) (document.Document, error) {
	i, ok := p.byID[id]
	if !ok {
		return nil, &DocumentDoNotExistError{ID: id}
	}
	return p.docs[i].Clone(), nil
}

func (p *Portfolio) GetByName(name string) (document.Document, error) {
	i, ok := p.byName[name]
	if !ok {
		return nil, &DocumentDoNotExistError{ID: name}
	}
	return p.docs[i].Clone(), nil
}

// Insert assigns an id when doc.ID() is empty, enforces id and name
// uniqueness, validates, and appends. Returns the assigned id.
func (p *Portfolio) Insert(doc document.Document, v document.CertValidator) (string, error) {
	if !document.IsSupportedType(doc.Type()) {
		return "", &IllegalActionError{Reason: fmt.Sprintf("unsupported document type %q", doc.Type())}
	}
	if doc.ID() == "" {
		doc.SetID(uuid.NewString())
	}
	if _, exists := p.byID[doc.ID()]; exists {
		doc.SetID(uuid.NewString())
	}
	if _, exists := p.byName[doc.Name()]; exists {
		return "", &NameAlreadyExistsError{Name: doc.Name()}
	}
	if err := doc.Validate(v); err != nil {
		return "", err
	}

	p.appendLocked(doc.Clone())
	return doc.ID(), nil
}

// Update locates the stored document by id, enforces that a changed name
// is not already held by another document, validates, and replaces it —
// honoring the secret-preservation rule from spec.md §4.2: when the
// incoming document has no private part, the stored secret part carries
// over unchanged.
func (p *Portfolio) Update(doc document.Document, v document.CertValidator) (*UpdateResult, error) {
	i, ok := p.byID[doc.ID()]
	if !ok {
		return nil, &DocumentDoNotExistError{ID: doc.ID()}
	}
	old := p.docs[i]

	if doc.Type() != old.Type() {
		return nil, &IllegalActionError{Reason: "update may not change document type"}
	}
	if doc.Name() != old.Name() {
		if j, exists := p.byName[doc.Name()]; exists && j != i {
			return nil, &NameAlreadyExistsError{Name: doc.Name()}
		}
	}

	merged := old.Clone()
	merged.SetName(doc.Name())
	merged.SetTags(doc.Tags())
	merged.SetUsages(doc.Usages())
	if err := merged.UpdateFromPublic(doc.SerializePublic()); err != nil {
		return nil, err
	}

	secretChanged := false
	if doc.ContainsPrivate() {
		if err := merged.UpdateFromPrivate(doc.SerializePrivate()); err != nil {
			return nil, err
		}
		secretChanged = !old.EqualsPrivate(merged)
	}

	if err := merged.Validate(v); err != nil {
		return nil, err
	}

	nonSecretChanged := !old.EqualsPublic(merged)

	delete(p.byName, old.Name())
	p.byName[merged.Name()] = i
	p.docs[i] = merged.Clone()

	return &UpdateResult{
		Old:              old.Clone(),
		New:              merged.Clone(),
		NonSecretChanged: nonSecretChanged,
		SecretChanged:    secretChanged,
	}, nil
}

// Remove deletes the document with the given id and returns its prior
// value.
func (p *Portfolio) Remove(id string) (document.Document, error) {
	i, ok := p.byID[id]
	if !ok {
		return nil, &DocumentDoNotExistError{ID: id}
	}
	removed := p.docs[i]

	p.docs = append(p.docs[:i], p.docs[i+1:]...)
	delete(p.byID, removed.ID())
	delete(p.byName, removed.Name())
	for idx := i; idx < len(p.docs); idx++ {
		p.byID[p.docs[idx].ID()] = idx
		p.byName[p.docs[idx].Name()] = idx
	}

	return removed, nil
}
