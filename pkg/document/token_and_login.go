package document

// Wire keys for the TokenAndLogin variant.
const (
	KeyTokenAndLoginLogin = "secw_token_and_login_login"
	KeyTokenAndLoginToken = "secw_token_and_login_token"
)

func init() {
	register(TypeTokenAndLogin, func() Document { return NewTokenAndLogin() })
}

// TokenAndLogin has the same shape as LoginAndToken but is a distinct
// document type on the wire (spec.md §3 lists both).
type TokenAndLogin struct {
	Header

	Login string
	Token string
}

func NewTokenAndLogin() *TokenAndLogin {
	return &TokenAndLogin{Header: NewHeader(TypeTokenAndLogin)}
}

func (d *TokenAndLogin) Clone() Document {
	c := NewTokenAndLogin()
	d.Header.cloneInto(&c.Header)
	c.Login = d.Login
	c.Token = d.Token
	return c
}

func (d *TokenAndLogin) Validate(_ CertValidator) error {
	if d.ContainsPrivate() && d.Token == "" {
		return &ValidationError{Field: KeyTokenAndLoginToken, Reason: "must not be empty"}
	}
	return nil
}

func (d *TokenAndLogin) SerializePublic() Fields {
	return Fields{KeyTokenAndLoginLogin: d.Login}
}

func (d *TokenAndLogin) SerializePrivate() Fields {
	f := Fields{}
	if d.Token != "" {
		f[KeyTokenAndLoginToken] = d.Token
	}
	return f
}

func (d *TokenAndLogin) UpdateFromPublic(in Fields) error {
	if v, ok := in[KeyTokenAndLoginLogin]; ok {
		s, err := asString(v)
		if err != nil {
			return &ValidationError{Field: KeyTokenAndLoginLogin, Reason: err.Error()}
		}
		d.Login = s
	}
	return nil
}

func (d *TokenAndLogin) UpdateFromPrivate(in Fields) error {
	if v, ok := in[KeyTokenAndLoginToken]; ok {
		s, err := asString(v)
		if err != nil {
			return &ValidationError{Field: KeyTokenAndLoginToken, Reason: err.Error()}
		}
		d.Token = s
	}
	return nil
}

func (d *TokenAndLogin) EqualsPublic(other Document) bool {
	o, ok := other.(*TokenAndLogin)
	if !ok {
		return false
	}
	return d.equalsHeader(&o.Header) && d.Login == o.Login
}

func (d *TokenAndLogin) EqualsPrivate(other Document) bool {
	o, ok := other.(*TokenAndLogin)
	if !ok {
		return false
	}
	return d.Token == o.Token
}
