package document

import "testing"

func TestCloneFidelity(t *testing.T) {
	d := NewUserAndPassword()
	d.SetName("A")
	d.SetTags([]string{"loc", "dc1"})
	d.SetUsages([]string{"discovery_monitoring"})
	d.Username = "u"
	d.Password = "p"

	c := d.Clone()
	if !c.EqualsPublic(d) {
		t.Fatalf("clone not equal-public to original")
	}
	if !c.EqualsPrivate(d) {
		t.Fatalf("clone not equal-private to original")
	}

	// Mutating the clone must not affect the original (deep copy).
	c.(*UserAndPassword).Username = "changed"
	if d.Username == "changed" {
		t.Fatalf("clone shares storage with original")
	}
}

func TestRedactionRoundTrip(t *testing.T) {
	d := NewUserAndPassword()
	d.SetName("A")
	d.Username = "u"
	d.Password = "secret"

	r := Redact(d)
	if r.ContainsPrivate() {
		t.Fatalf("redacted copy still marked as containing private data")
	}
	empty := NewUserAndPassword()
	if !r.EqualsPrivate(empty) {
		t.Fatalf("redacted copy retains secret material")
	}
	if !r.EqualsPublic(d) {
		t.Fatalf("redacted copy diverges on public half")
	}
}

func TestSerializeThenUpdateRoundTrip(t *testing.T) {
	d := NewSnmpv3()
	d.SetName("snmp-profile")
	d.SecurityLevel = AuthPriv
	d.SecurityName = "admin"
	d.AuthProtocol = SHA256
	d.PrivProtocol = AES256
	d.AuthPassword = "authpw"
	d.PrivPassword = "privpw"

	pub := d.SerializePublic()
	priv := d.SerializePrivate()

	c2 := NewSnmpv3()
	c2.SetName(d.Name())
	if err := c2.UpdateFromPublic(pub); err != nil {
		t.Fatalf("UpdateFromPublic: %v", err)
	}
	if err := c2.UpdateFromPrivate(priv); err != nil {
		t.Fatalf("UpdateFromPrivate: %v", err)
	}

	if !c2.EqualsPublic(d) {
		t.Fatalf("round-tripped document diverges on public half")
	}
	if !c2.EqualsPrivate(d) {
		t.Fatalf("round-tripped document diverges on private half")
	}
}

func TestUpdateFromPublicIgnoresUnknownFields(t *testing.T) {
	d := NewUserAndPassword()
	err := d.UpdateFromPublic(Fields{
		KeyUserAndPasswordUsername: "u",
		"some_future_field":        "ignored",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Username != "u" {
		t.Fatalf("known field was not applied")
	}
}

func TestUpdateFromPublicRejectsMalformedField(t *testing.T) {
	d := NewUserAndPassword()
	err := d.UpdateFromPublic(Fields{KeyUserAndPasswordUsername: 42})
	if err == nil {
		t.Fatalf("expected an error for a malformed field")
	}
	var ve *ValidationError
	if !asValidationError(err, &ve) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if ve.Field != KeyUserAndPasswordUsername {
		t.Fatalf("expected field %q, got %q", KeyUserAndPasswordUsername, ve.Field)
	}
}

func asValidationError(err error, target **ValidationError) bool {
	ve, ok := err.(*ValidationError)
	if !ok {
		return false
	}
	*target = ve
	return true
}

func TestValidateUserAndPassword(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		private  bool
		wantErr  bool
	}{
		{"valid with secret", "u", "p", true, false},
		{"valid without secret", "u", "", false, false},
		{"empty username", "", "p", true, true},
		{"empty password with secret", "u", "", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewUserAndPassword()
			d.Username = tt.username
			d.Password = tt.password
			d.SetContainsPrivate(tt.private)
			err := d.Validate(nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateSnmpv3(t *testing.T) {
	tests := []struct {
		name     string
		level    SecurityLevel
		secName  string
		authPass string
		privPass string
		wantErr  bool
	}{
		{"no auth no priv, no name needed", NoAuthNoPriv, "", "", "", false},
		{"auth no priv requires name and auth password", AuthNoPriv, "admin", "pw", "", false},
		{"auth no priv missing name", AuthNoPriv, "", "pw", "", true},
		{"auth no priv missing auth password", AuthNoPriv, "admin", "", "", true},
		{"auth priv requires both passwords", AuthPriv, "admin", "pw1", "pw2", false},
		{"auth priv missing priv password", AuthPriv, "admin", "pw1", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewSnmpv3()
			d.SecurityLevel = tt.level
			d.SecurityName = tt.secName
			d.AuthPassword = tt.authPass
			d.PrivPassword = tt.privPass
			err := d.Validate(nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSupportedTypes(t *testing.T) {
	want := []string{
		TypeExternalCertificate,
		TypeInternalCertificate,
		TypeLoginAndToken,
		TypeSnmpv1,
		TypeSnmpv3,
		TypeSshKeyAndLogin,
		TypeTokenAndLogin,
		TypeUserAndPassword,
	}
	got := SupportedTypes()
	if len(got) != len(want) {
		t.Fatalf("got %d types, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("type[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNewUnknownType(t *testing.T) {
	_, err := New("NotAType")
	if err == nil {
		t.Fatalf("expected an error for an unsupported type")
	}
	if _, ok := err.(*UnknownTypeError); !ok {
		t.Fatalf("expected *UnknownTypeError, got %T", err)
	}
}

func TestTagsDeduplicateAndPreserveOrder(t *testing.T) {
	d := NewUserAndPassword()
	d.SetTags([]string{"b", "a", "b", "c"})
	got := d.Tags()
	want := []string{"b", "a", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
