package document

import (
	"fmt"
	"sort"
)

// Wire keys for the document header, shared by every variant's JSON form.
const (
	KeyID      = "secw_doc_id"
	KeyName    = "secw_doc_name"
	KeyType    = "secw_doc_type"
	KeyTags    = "secw_doc_tags"
	KeyUsages  = "secw_doc_usages"
	KeyPublic  = "secw_doc_public"
	KeyPrivate = "secw_doc_private"
)

// Closed set of supported document types (spec.md §3).
const (
	TypeSnmpv1              = "Snmpv1"
	TypeSnmpv3              = "Snmpv3"
	TypeUserAndPassword     = "UserAndPassword"
	TypeLoginAndToken       = "LoginAndToken"
	TypeTokenAndLogin       = "TokenAndLogin"
	TypeSshKeyAndLogin      = "SshKeyAndLogin"
	TypeExternalCertificate = "ExternalCertificate"
	TypeInternalCertificate = "InternalCertificate"
)

// Fields is the generic key/value shape used for the public and private
// halves of a document on the wire. Values are whatever encoding/json
// would produce from a JSON object: string, float64, bool, []interface{},
// map[string]interface{}, or nil.
type Fields map[string]interface{}

// ValidationError reports that a single field failed Document.Validate.
// The wallet dispatcher translates it into InvalidDocumentFormat
// (errorCode 9, extraData.docField = Field).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid document field %q: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid document field %q", e.Field)
}

// UnknownTypeError reports a document type outside the closed set.
// The wallet dispatcher translates it into UnknownDocumentType
// (errorCode 8, extraData.docType = Type).
type UnknownTypeError struct {
	Type string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown document type %q", e.Type)
}

// CertValidator parses and validates PEM-encoded certificates and private
// keys. It is the one delegated-out collaborator spec.md §1 calls for;
// pkg/security provides the x509-backed implementation. Variants that are
// not certificates ignore it.
type CertValidator interface {
	ValidateCertificate(pem string) error
	ValidateCertificateWithKey(certPEM, keyPEM string) error
}

// Document is the capability set every variant implements. There is no
// shared base class: each variant embeds Header for the common fields and
// supplies the type-specific behavior below.
type Document interface {
	ID() string
	SetID(id string)
	Name() string
	SetName(name string)
	Type() string
	Tags() []string
	SetTags(tags []string)
	Usages() []string
	SetUsages(usages []string)
	ContainsPrivate() bool
	SetContainsPrivate(v bool)

	// Clone returns a deep copy, including ContainsPrivate.
	Clone() Document

	// Validate checks variant-specific required fields. v may be nil for
	// variants that never need to reach into the certificate validator.
	Validate(v CertValidator) error

	SerializePublic() Fields
	SerializePrivate() Fields
	UpdateFromPublic(in Fields) error
	UpdateFromPrivate(in Fields) error

	EqualsPublic(other Document) bool
	EqualsPrivate(other Document) bool
}

// Header is the common, embeddable part of every document variant: id,
// name, type, tags, and usages, plus the contains-private view flag.
type Header struct {
	id              string
	name            string
	typ             string
	tags            []string
	usages          map[string]struct{}
	containsPrivate bool
}

// NewHeader builds a Header for the given type. Authoritative (stored)
// documents are constructed with containsPrivate=true; redacted copies
// clear it via SetContainsPrivate.
func NewHeader(typ string) Header {
	return Header{typ: typ, usages: make(map[string]struct{}), containsPrivate: true}
}

func (h *Header) ID() string   { return h.id }
func (h *Header) SetID(id string) { h.id = id }
func (h *Header) Name() string { return h.name }
func (h *Header) SetName(name string) { h.name = name }
func (h *Header) Type() string { return h.typ }

func (h *Header) Tags() []string {
	out := make([]string, len(h.tags))
	copy(out, h.tags)
	return out
}

// SetTags stores tags in insertion order, dropping duplicates (a document's
// tags are an ordered-but-unique sequence per spec.md §3).
func (h *Header) SetTags(tags []string) {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	h.tags = out
}

func (h *Header) Usages() []string {
	out := make([]string, 0, len(h.usages))
	for u := range h.usages {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

func (h *Header) SetUsages(usages []string) {
	h.usages = make(map[string]struct{}, len(usages))
	for _, u := range usages {
		h.usages[u] = struct{}{}
	}
}

func (h *Header) ContainsPrivate() bool    { return h.containsPrivate }
func (h *Header) SetContainsPrivate(v bool) { h.containsPrivate = v }

func (h *Header) cloneInto(dst *Header) {
	dst.id = h.id
	dst.name = h.name
	dst.typ = h.typ
	dst.tags = h.Tags()
	dst.usages = make(map[string]struct{}, len(h.usages))
	for u := range h.usages {
		dst.usages[u] = struct{}{}
	}
	dst.containsPrivate = h.containsPrivate
}

func (h *Header) equalsHeader(o *Header) bool {
	if h.name != o.name || h.typ != o.typ {
		return false
	}
	if len(h.tags) != len(o.tags) {
		return false
	}
	for i, t := range h.tags {
		if o.tags[i] != t {
			return false
		}
	}
	if len(h.usages) != len(o.usages) {
		return false
	}
	for u := range h.usages {
		if _, ok := o.usages[u]; !ok {
			return false
		}
	}
	return true
}

// factory keys the closed set of document types to a constructor. Every
// variant registers itself from an init() in its own file.
var factory = make(map[string]func() Document)

func register(typ string, ctor func() Document) {
	factory[typ] = ctor
}

// New builds a zero-value document of the given type, or UnknownTypeError
// if typ is outside the closed set (I1 in spec.md §3).
func New(typ string) (Document, error) {
	ctor, ok := factory[typ]
	if !ok {
		return nil, &UnknownTypeError{Type: typ}
	}
	return ctor(), nil
}

// SupportedTypes returns the closed set of document type names.
func SupportedTypes() []string {
	out := make([]string, 0, len(factory))
	for t := range factory {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// IsSupportedType reports whether typ is in the closed set.
func IsSupportedType(typ string) bool {
	_, ok := factory[typ]
	return ok
}

// Redact returns a copy of d with ContainsPrivate cleared and all secret
// fields removed. It is implemented as a standalone function rather than
// a serialization flag per design note in spec.md §9: a flag that
// conditionally suppresses fields during encoding has historically been a
// source of leaks. Redact builds the new value directly from the public
// half and never touches the private half at all.
func Redact(d Document) Document {
	out, err := New(d.Type())
	if err != nil {
		// d.Type() came from a live Document, so it is always supported.
		panic(err)
	}
	out.SetID(d.ID())
	out.SetName(d.Name())
	out.SetTags(d.Tags())
	out.SetUsages(d.Usages())
	_ = out.UpdateFromPublic(d.SerializePublic())
	out.SetContainsPrivate(false)
	return out
}
