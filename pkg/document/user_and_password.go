package document

// Wire keys for the UserAndPassword variant.
const (
	KeyUserAndPasswordUsername = "secw_user_and_password_username"
	KeyUserAndPasswordPassword = "secw_user_and_password_password"
)

func init() {
	register(TypeUserAndPassword, func() Document { return NewUserAndPassword() })
}

// UserAndPassword is a plain username/password credential: public
// username, private password.
type UserAndPassword struct {
	Header

	Username string
	Password string
}

func NewUserAndPassword() *UserAndPassword {
	return &UserAndPassword{Header: NewHeader(TypeUserAndPassword)}
}

func (d *UserAndPassword) Clone() Document {
	c := NewUserAndPassword()
	d.Header.cloneInto(&c.Header)
	c.Username = d.Username
	c.Password = d.Password
	return c
}

// Validate requires a non-empty username always, and a non-empty password
// when the document carries private data (spec.md §4.1).
func (d *UserAndPassword) Validate(_ CertValidator) error {
	if d.Username == "" {
		return &ValidationError{Field: KeyUserAndPasswordUsername, Reason: "must not be empty"}
	}
	if d.ContainsPrivate() && d.Password == "" {
		return &ValidationError{Field: KeyUserAndPasswordPassword, Reason: "must not be empty"}
	}
	return nil
}

func (d *UserAndPassword) SerializePublic() Fields {
	return Fields{KeyUserAndPasswordUsername: d.Username}
}

func (d *UserAndPassword) SerializePrivate() Fields {
	f := Fields{}
	if d.Password != "" {
		f[KeyUserAndPasswordPassword] = d.Password
	}
	return f
}

func (d *UserAndPassword) UpdateFromPublic(in Fields) error {
	if v, ok := in[KeyUserAndPasswordUsername]; ok {
		s, err := asString(v)
		if err != nil {
			return &ValidationError{Field: KeyUserAndPasswordUsername, Reason: err.Error()}
		}
		d.Username = s
	}
	return nil
}

func (d *UserAndPassword) UpdateFromPrivate(in Fields) error {
	if v, ok := in[KeyUserAndPasswordPassword]; ok {
		s, err := asString(v)
		if err != nil {
			return &ValidationError{Field: KeyUserAndPasswordPassword, Reason: err.Error()}
		}
		d.Password = s
	}
	return nil
}

func (d *UserAndPassword) EqualsPublic(other Document) bool {
	o, ok := other.(*UserAndPassword)
	if !ok {
		return false
	}
	return d.equalsHeader(&o.Header) && d.Username == o.Username
}

func (d *UserAndPassword) EqualsPrivate(other Document) bool {
	o, ok := other.(*UserAndPassword)
	if !ok {
		return false
	}
	return d.Password == o.Password
}
