package auth

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/surveypro/saas-backend/db"
	"golang.org/x/crypto/bcrypt"
)

func TestEmailOnly(t *testing.T) {
	c := qt.New(t)
	var a Authenticator = EmailOnly{}
	c.Assert(a.Register("company:a@x.com", ""), qt.IsNil)
	c.Assert(a.Verify("company:a@x.com", "anything"), qt.IsNil)
	c.Assert(a.Verify("company:unknown@x.com", ""), qt.IsNil)
}

func TestBcrypt(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()
	store, err := db.NewLocalStorage(dir)
	c.Assert(err, qt.IsNil)

	a, err := NewBcrypt(store, bcrypt.MinCost)
	c.Assert(err, qt.IsNil)

	id := AccountID("company", " A@X.com ")
	c.Assert(id, qt.Equals, "company:a@x.com")
	c.Assert(a.Register(id, "short"), qt.ErrorIs, ErrPasswordTooShort)
	c.Assert(a.Register(id, "secret123"), qt.IsNil)
	c.Assert(a.Verify(id, "secret123"), qt.IsNil)
	c.Assert(a.Verify(id, "secret124"), qt.ErrorIs, ErrInvalidCredentials)
	c.Assert(a.Verify(AccountID("user", "a@x.com"), "secret123"), qt.ErrorIs, ErrInvalidCredentials)

	// hashes survive a restart
	store.Close()
	store, err = db.NewLocalStorage(dir)
	c.Assert(err, qt.IsNil)
	defer store.Close()
	a, err = NewBcrypt(store, bcrypt.MinCost)
	c.Assert(err, qt.IsNil)
	c.Assert(a.Verify(id, "secret123"), qt.IsNil)
}

func TestBcryptSeed(t *testing.T) {
	c := qt.New(t)
	store, err := db.NewLocalStorage(t.TempDir())
	c.Assert(err, qt.IsNil)
	defer store.Close()
	a, err := NewBcrypt(store, bcrypt.MinCost)
	c.Assert(err, qt.IsNil)

	admin := AccountID("company", "admin@techcorp.com")
	john := AccountID("user", "john@example.com")
	c.Assert(a.Register(john, "johns-own-password"), qt.IsNil)
	c.Assert(a.Missing(admin, john), qt.DeepEquals, []string{admin})

	_, err = a.Seed("demo", admin, john)
	c.Assert(err, qt.ErrorIs, ErrPasswordTooShort)
	c.Assert(a.Missing(admin), qt.HasLen, 1)

	seeded, err := a.Seed("demo-password", admin, john)
	c.Assert(err, qt.IsNil)
	c.Assert(seeded, qt.Equals, 1)
	c.Assert(a.Verify(admin, "demo-password"), qt.IsNil)
	// registered passwords are not replaced
	c.Assert(a.Verify(john, "demo-password"), qt.ErrorIs, ErrInvalidCredentials)
	c.Assert(a.Verify(john, "johns-own-password"), qt.IsNil)
	c.Assert(a.Missing(admin, john), qt.HasLen, 0)

	seeded, err = a.Seed("demo-password", admin, john)
	c.Assert(err, qt.IsNil)
	c.Assert(seeded, qt.Equals, 0)
}
