package document

// Wire keys for the LoginAndToken variant.
const (
	KeyLoginAndTokenLogin = "secw_login_and_token_login"
	KeyLoginAndTokenToken = "secw_login_and_token_token"
)

func init() {
	register(TypeLoginAndToken, func() Document { return NewLoginAndToken() })
}

// LoginAndToken is a login/API-token pair: public login, private token.
type LoginAndToken struct {
	Header

	Login string
	Token string
}

func NewLoginAndToken() *LoginAndToken {
	return &LoginAndToken{Header: NewHeader(TypeLoginAndToken)}
}

func (d *LoginAndToken) Clone() Document {
	c := NewLoginAndToken()
	d.Header.cloneInto(&c.Header)
	c.Login = d.Login
	c.Token = d.Token
	return c
}

func (d *LoginAndToken) Validate(_ CertValidator) error {
	if d.ContainsPrivate() && d.Token == "" {
		return &ValidationError{Field: KeyLoginAndTokenToken, Reason: "must not be empty"}
	}
	return nil
}

func (d *LoginAndToken) SerializePublic() Fields {
	return Fields{KeyLoginAndTokenLogin: d.Login}
}

func (d *LoginAndToken) SerializePrivate() Fields {
	f := Fields{}
	if d.Token != "" {
		f[KeyLoginAndTokenToken] = d.Token
	}
	return f
}

func (d *LoginAndToken) UpdateFromPublic(in Fields) error {
	if v, ok := in[KeyLoginAndTokenLogin]; ok {
		s, err := asString(v)
		if err != nil {
			return &ValidationError{Field: KeyLoginAndTokenLogin, Reason: err.Error()}
		}
		d.Login = s
	}
	return nil
}

func (d *LoginAndToken) UpdateFromPrivate(in Fields) error {
	if v, ok := in[KeyLoginAndTokenToken]; ok {
		s, err := asString(v)
		if err != nil {
			return &ValidationError{Field: KeyLoginAndTokenToken, Reason: err.Error()}
		}
		d.Token = s
	}
	return nil
}

func (d *LoginAndToken) EqualsPublic(other Document) bool {
	o, ok := other.(*LoginAndToken)
	if !ok {
		return false
	}
	return d.equalsHeader(&o.Header) && d.Login == o.Login
}

func (d *LoginAndToken) EqualsPrivate(other Document) bool {
	o, ok := other.(*LoginAndToken)
	if !ok {
		return false
	}
	return d.Token == o.Token
}
