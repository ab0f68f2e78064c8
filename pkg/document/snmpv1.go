package document

// Wire key for the Snmpv1 variant.
const KeySnmpv1Community = "snmpv1_community_name"

func init() {
	register(TypeSnmpv1, func() Document { return NewSnmpv1() })
}

// Snmpv1 is the SNMPv1 profile document: no public fields, a single
// private community string.
type Snmpv1 struct {
	Header

	Community string
}

func NewSnmpv1() *Snmpv1 {
	return &Snmpv1{Header: NewHeader(TypeSnmpv1)}
}

func (d *Snmpv1) Clone() Document {
	c := NewSnmpv1()
	d.Header.cloneInto(&c.Header)
	c.Community = d.Community
	return c
}

func (d *Snmpv1) Validate(_ CertValidator) error {
	if d.ContainsPrivate() && d.Community == "" {
		return &ValidationError{Field: KeySnmpv1Community, Reason: "must not be empty"}
	}
	return nil
}

func (d *Snmpv1) SerializePublic() Fields { return Fields{} }

func (d *Snmpv1) SerializePrivate() Fields {
	f := Fields{}
	if d.Community != "" {
		f[KeySnmpv1Community] = d.Community
	}
	return f
}

func (d *Snmpv1) UpdateFromPublic(_ Fields) error { return nil }

func (d *Snmpv1) UpdateFromPrivate(in Fields) error {
	if v, ok := in[KeySnmpv1Community]; ok {
		s, err := asString(v)
		if err != nil {
			return &ValidationError{Field: KeySnmpv1Community, Reason: err.Error()}
		}
		d.Community = s
	}
	return nil
}

func (d *Snmpv1) EqualsPublic(other Document) bool {
	o, ok := other.(*Snmpv1)
	if !ok {
		return false
	}
	return d.equalsHeader(&o.Header)
}

func (d *Snmpv1) EqualsPrivate(other Document) bool {
	o, ok := other.(*Snmpv1)
	if !ok {
		return false
	}
	return d.Community == o.Community
}
