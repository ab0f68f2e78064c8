package document

import "fmt"

// SecurityLevel is the SNMPv3 security level (wire values fixed by
// spec.md §3).
type SecurityLevel int

const (
	NoAuthNoPriv SecurityLevel = iota
	AuthNoPriv
	AuthPriv
)

func (l SecurityLevel) String() string {
	switch l {
	case NoAuthNoPriv:
		return "NO_AUTH_NO_PRIV"
	case AuthNoPriv:
		return "AUTH_NO_PRIV"
	case AuthPriv:
		return "AUTH_PRIV"
	default:
		return fmt.Sprintf("SecurityLevel(%d)", int(l))
	}
}

// AuthProtocol is the SNMPv3 authentication protocol.
type AuthProtocol int

const (
	MD5 AuthProtocol = iota
	SHA
	SHA256
	SHA384
	SHA512
)

func (p AuthProtocol) String() string {
	switch p {
	case MD5:
		return "MD5"
	case SHA:
		return "SHA"
	case SHA256:
		return "SHA256"
	case SHA384:
		return "SHA384"
	case SHA512:
		return "SHA512"
	default:
		return fmt.Sprintf("AuthProtocol(%d)", int(p))
	}
}

// PrivProtocol is the SNMPv3 privacy (encryption) protocol.
type PrivProtocol int

const (
	DES PrivProtocol = iota
	AES
	AES192
	AES256
)

func (p PrivProtocol) String() string {
	switch p {
	case DES:
		return "DES"
	case AES:
		return "AES"
	case AES192:
		return "AES192"
	case AES256:
		return "AES256"
	default:
		return fmt.Sprintf("PrivProtocol(%d)", int(p))
	}
}

// Wire keys for the Snmpv3 variant.
const (
	KeySnmpv3SecurityLevel = "secw_snmpv3_security_level"
	KeySnmpv3SecurityName  = "secw_snmpv3_security_name"
	KeySnmpv3AuthProtocol  = "secw_snmpv3_auth_protocol"
	KeySnmpv3AuthPassword  = "secw_snmpv3_auth_password"
	KeySnmpv3PrivProtocol  = "secw_snmpv3_priv_protocol"
	KeySnmpv3PrivPassword  = "secw_snmpv3_priv_password"
)

func init() {
	register(TypeSnmpv3, func() Document { return NewSnmpv3() })
}

// Snmpv3 is the SNMPv3 profile document: public security parameters plus
// a private pair of authentication/privacy passwords.
type Snmpv3 struct {
	Header

	SecurityLevel SecurityLevel
	SecurityName  string
	AuthProtocol  AuthProtocol
	PrivProtocol  PrivProtocol

	AuthPassword string
	PrivPassword string
}

// NewSnmpv3 builds a zero-value Snmpv3 document with the defaults used by
// the original implementation (NO_AUTH_NO_PRIV, MD5, DES).
func NewSnmpv3() *Snmpv3 {
	return &Snmpv3{
		Header:        NewHeader(TypeSnmpv3),
		SecurityLevel: NoAuthNoPriv,
		AuthProtocol:  MD5,
		PrivProtocol:  DES,
	}
}

func (d *Snmpv3) Clone() Document {
	c := NewSnmpv3()
	d.Header.cloneInto(&c.Header)
	c.SecurityLevel = d.SecurityLevel
	c.SecurityName = d.SecurityName
	c.AuthProtocol = d.AuthProtocol
	c.PrivProtocol = d.PrivProtocol
	c.AuthPassword = d.AuthPassword
	c.PrivPassword = d.PrivPassword
	return c
}

// Validate enforces spec.md §4.1: AUTH_* levels require an auth password,
// AUTH_PRIV additionally requires a priv password, and securityName is
// required for every level but NO_AUTH_NO_PRIV.
func (d *Snmpv3) Validate(_ CertValidator) error {
	if d.SecurityLevel != NoAuthNoPriv && d.SecurityName == "" {
		return &ValidationError{Field: KeySnmpv3SecurityName, Reason: "required for this security level"}
	}
	if d.ContainsPrivate() {
		if (d.SecurityLevel == AuthNoPriv || d.SecurityLevel == AuthPriv) && d.AuthPassword == "" {
			return &ValidationError{Field: KeySnmpv3AuthPassword, Reason: "required for AUTH_NO_PRIV and AUTH_PRIV"}
		}
		if d.SecurityLevel == AuthPriv && d.PrivPassword == "" {
			return &ValidationError{Field: KeySnmpv3PrivPassword, Reason: "required for AUTH_PRIV"}
		}
	}
	return nil
}

func (d *Snmpv3) SerializePublic() Fields {
	return Fields{
		KeySnmpv3SecurityLevel: int(d.SecurityLevel),
		KeySnmpv3SecurityName:  d.SecurityName,
		KeySnmpv3AuthProtocol:  int(d.AuthProtocol),
		KeySnmpv3PrivProtocol:  int(d.PrivProtocol),
	}
}

func (d *Snmpv3) SerializePrivate() Fields {
	f := Fields{}
	if d.AuthPassword != "" {
		f[KeySnmpv3AuthPassword] = d.AuthPassword
	}
	if d.PrivPassword != "" {
		f[KeySnmpv3PrivPassword] = d.PrivPassword
	}
	return f
}

func (d *Snmpv3) UpdateFromPublic(in Fields) error {
	if v, ok := in[KeySnmpv3SecurityLevel]; ok {
		n, err := asInt(v)
		if err != nil {
			return &ValidationError{Field: KeySnmpv3SecurityLevel, Reason: err.Error()}
		}
		d.SecurityLevel = SecurityLevel(n)
	}
	if v, ok := in[KeySnmpv3SecurityName]; ok {
		s, err := asString(v)
		if err != nil {
			return &ValidationError{Field: KeySnmpv3SecurityName, Reason: err.Error()}
		}
		d.SecurityName = s
	}
	if v, ok := in[KeySnmpv3AuthProtocol]; ok {
		n, err := asInt(v)
		if err != nil {
			return &ValidationError{Field: KeySnmpv3AuthProtocol, Reason: err.Error()}
		}
		d.AuthProtocol = AuthProtocol(n)
	}
	if v, ok := in[KeySnmpv3PrivProtocol]; ok {
		n, err := asInt(v)
		if err != nil {
			return &ValidationError{Field: KeySnmpv3PrivProtocol, Reason: err.Error()}
		}
		d.PrivProtocol = PrivProtocol(n)
	}
	return nil
}

func (d *Snmpv3) UpdateFromPrivate(in Fields) error {
	if v, ok := in[KeySnmpv3AuthPassword]; ok {
		s, err := asString(v)
		if err != nil {
			return &ValidationError{Field: KeySnmpv3AuthPassword, Reason: err.Error()}
		}
		d.AuthPassword = s
	}
	if v, ok := in[KeySnmpv3PrivPassword]; ok {
		s, err := asString(v)
		if err != nil {
			return &ValidationError{Field: KeySnmpv3PrivPassword, Reason: err.Error()}
		}
		d.PrivPassword = s
	}
	return nil
}

func (d *Snmpv3) EqualsPublic(other Document) bool {
	o, ok := other.(*Snmpv3)
	if !ok {
		return false
	}
	return d.equalsHeader(&o.Header) &&
		d.SecurityLevel == o.SecurityLevel &&
		d.SecurityName == o.SecurityName &&
		d.AuthProtocol == o.AuthProtocol &&
		d.PrivProtocol == o.PrivProtocol
}

func (d *Snmpv3) EqualsPrivate(other Document) bool {
	o, ok := other.(*Snmpv3)
	if !ok {
		return false
	}
	return d.AuthPassword == o.AuthPassword && d.PrivPassword == o.PrivPassword
}
