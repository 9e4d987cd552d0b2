package session

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/surveypro/saas-backend/db"
)

func TestSessionPersistence(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()
	store, err := db.NewLocalStorage(dir)
	c.Assert(err, qt.IsNil)

	s := New(store)
	c.Assert(s.Company(), qt.IsNil)
	c.Assert(s.User(), qt.IsNil)

	company := db.SeedCompanies()[0]
	user := db.SeedUsers()[1]
	s.SetCompany(&company)
	s.SetUser(&user)

	// the session keeps its own copy
	company.Name = "changed"
	c.Assert(s.Company().Name, qt.Equals, "TechCorp Solutions")

	store.Close()
	store, err = db.NewLocalStorage(dir)
	c.Assert(err, qt.IsNil)
	defer store.Close()

	restored := New(store)
	c.Assert(restored.Company().ID, qt.Equals, "comp-1")
	c.Assert(restored.User().Email, qt.Equals, "jane@example.com")

	restored.SetCompany(nil)
	var stored *db.Company
	c.Assert(store.Load(db.CurrentCompanyKey, &stored), qt.ErrorIs, db.ErrNotFound)
	c.Assert(New(store).Company(), qt.IsNil)
	c.Assert(New(store).User(), qt.Not(qt.IsNil))
}

func TestSessionWithoutStore(t *testing.T) {
	c := qt.New(t)
	s := New(nil)
	user := db.SeedUsers()[0]
	s.SetUser(&user)
	c.Assert(s.User().ID, qt.Equals, "user-1")
	s.SetUser(nil)
	c.Assert(s.User(), qt.IsNil)
}
