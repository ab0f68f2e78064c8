package document

// Wire keys for the SshKeyAndLogin variant.
const (
	KeySshKeyAndLoginLogin  = "secw_sshkey_and_login_login"
	KeySshKeyAndLoginSshKey = "secw_sshkey_and_login_sshkey"
)

func init() {
	register(TypeSshKeyAndLogin, func() Document { return NewSshKeyAndLogin() })
}

// SshKeyAndLogin is an SSH login/key pair: public login, private key.
type SshKeyAndLogin struct {
	Header

	Login  string
	SshKey string
}

func NewSshKeyAndLogin() *SshKeyAndLogin {
	return &SshKeyAndLogin{Header: NewHeader(TypeSshKeyAndLogin)}
}

func (d *SshKeyAndLogin) Clone() Document {
	c := NewSshKeyAndLogin()
	d.Header.cloneInto(&c.Header)
	c.Login = d.Login
	c.SshKey = d.SshKey
	return c
}

func (d *SshKeyAndLogin) Validate(_ CertValidator) error {
	if d.ContainsPrivate() && d.SshKey == "" {
		return &ValidationError{Field: KeySshKeyAndLoginSshKey, Reason: "must not be empty"}
	}
	return nil
}

func (d *SshKeyAndLogin) SerializePublic() Fields {
	return Fields{KeySshKeyAndLoginLogin: d.Login}
}

func (d *SshKeyAndLogin) SerializePrivate() Fields {
	f := Fields{}
	if d.SshKey != "" {
		f[KeySshKeyAndLoginSshKey] = d.SshKey
	}
	return f
}

func (d *SshKeyAndLogin) UpdateFromPublic(in Fields) error {
	if v, ok := in[KeySshKeyAndLoginLogin]; ok {
		s, err := asString(v)
		if err != nil {
			return &ValidationError{Field: KeySshKeyAndLoginLogin, Reason: err.Error()}
		}
		d.Login = s
	}
	return nil
}

func (d *SshKeyAndLogin) UpdateFromPrivate(in Fields) error {
	if v, ok := in[KeySshKeyAndLoginSshKey]; ok {
		s, err := asString(v)
		if err != nil {
			return &ValidationError{Field: KeySshKeyAndLoginSshKey, Reason: err.Error()}
		}
		d.SshKey = s
	}
	return nil
}

func (d *SshKeyAndLogin) EqualsPublic(other Document) bool {
	o, ok := other.(*SshKeyAndLogin)
	if !ok {
		return false
	}
	return d.equalsHeader(&o.Header) && d.Login == o.Login
}

func (d *SshKeyAndLogin) EqualsPrivate(other Document) bool {
	o, ok := other.(*SshKeyAndLogin)
	if !ok {
		return false
	}
	return d.SshKey == o.SshKey
}
