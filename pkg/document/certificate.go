package document

// Wire keys for the certificate variants.
const (
	KeyExternalCertificatePem = "secw_external_certificate_pem"
	KeyInternalCertificatePem = "secw_internal_certificate_pem"
	KeyInternalCertificateKey = "secw_internal_certificate_key_pem"
)

func init() {
	register(TypeExternalCertificate, func() Document { return NewExternalCertificate() })
	register(TypeInternalCertificate, func() Document { return NewInternalCertificate() })
}

// ExternalCertificate holds a public PEM certificate with no private
// material (e.g. a trusted CA or peer certificate).
type ExternalCertificate struct {
	Header

	Pem string
}

func NewExternalCertificate() *ExternalCertificate {
	return &ExternalCertificate{Header: NewHeader(TypeExternalCertificate)}
}

func (d *ExternalCertificate) Clone() Document {
	c := NewExternalCertificate()
	d.Header.cloneInto(&c.Header)
	c.Pem = d.Pem
	return c
}

func (d *ExternalCertificate) Validate(v CertValidator) error {
	if v == nil {
		return nil
	}
	if err := v.ValidateCertificate(d.Pem); err != nil {
		return &ValidationError{Field: KeyExternalCertificatePem, Reason: err.Error()}
	}
	return nil
}

func (d *ExternalCertificate) SerializePublic() Fields {
	return Fields{KeyExternalCertificatePem: d.Pem}
}

func (d *ExternalCertificate) SerializePrivate() Fields { return Fields{} }

func (d *ExternalCertificate) UpdateFromPublic(in Fields) error {
	if v, ok := in[KeyExternalCertificatePem]; ok {
		s, err := asString(v)
		if err != nil {
			return &ValidationError{Field: KeyExternalCertificatePem, Reason: err.Error()}
		}
		d.Pem = s
	}
	return nil
}

func (d *ExternalCertificate) UpdateFromPrivate(_ Fields) error { return nil }

func (d *ExternalCertificate) EqualsPublic(other Document) bool {
	o, ok := other.(*ExternalCertificate)
	if !ok {
		return false
	}
	return d.equalsHeader(&o.Header) && d.Pem == o.Pem
}

func (d *ExternalCertificate) EqualsPrivate(other Document) bool {
	_, ok := other.(*ExternalCertificate)
	return ok
}

// InternalCertificate holds a public PEM certificate and its private PEM
// key (e.g. a managed server identity).
type InternalCertificate struct {
	Header

	Pem    string
	KeyPem string
}

func NewInternalCertificate() *InternalCertificate {
	return &InternalCertificate{Header: NewHeader(TypeInternalCertificate)}
}

func (d *InternalCertificate) Clone() Document {
	c := NewInternalCertificate()
	d.Header.cloneInto(&c.Header)
	c.Pem = d.Pem
	c.KeyPem = d.KeyPem
	return c
}

// Validate parses the certificate and, when private data is present,
// checks that the private key matches the certificate's public key
// (spec.md §4.1).
func (d *InternalCertificate) Validate(v CertValidator) error {
	if v == nil {
		return nil
	}
	if !d.ContainsPrivate() {
		if err := v.ValidateCertificate(d.Pem); err != nil {
			return &ValidationError{Field: KeyInternalCertificatePem, Reason: err.Error()}
		}
		return nil
	}
	if err := v.ValidateCertificateWithKey(d.Pem, d.KeyPem); err != nil {
		return &ValidationError{Field: KeyInternalCertificateKey, Reason: err.Error()}
	}
	return nil
}

func (d *InternalCertificate) SerializePublic() Fields {
	return Fields{KeyInternalCertificatePem: d.Pem}
}

func (d *InternalCertificate) SerializePrivate() Fields {
	f := Fields{}
	if d.KeyPem != "" {
		f[KeyInternalCertificateKey] = d.KeyPem
	}
	return f
}

func (d *InternalCertificate) UpdateFromPublic(in Fields) error {
	if v, ok := in[KeyInternalCertificatePem]; ok {
		s, err := asString(v)
		if err != nil {
			return &ValidationError{Field: KeyInternalCertificatePem, Reason: err.Error()}
		}
		d.Pem = s
	}
	return nil
}

func (d *InternalCertificate) UpdateFromPrivate(in Fields) error {
	if v, ok := in[KeyInternalCertificateKey]; ok {
		s, err := asString(v)
		if err != nil {
			return &ValidationError{Field: KeyInternalCertificateKey, Reason: err.Error()}
		}
		d.KeyPem = s
	}
	return nil
}

func (d *InternalCertificate) EqualsPublic(other Document) bool {
	o, ok := other.(*InternalCertificate)
	if !ok {
		return false
	}
	return d.equalsHeader(&o.Header) && d.Pem == o.Pem
}

func (d *InternalCertificate) EqualsPrivate(other Document) bool {
	o, ok := other.(*InternalCertificate)
	if !ok {
		return false
	}
	return d.KeyPem == o.KeyPem
}
