// Package session holds the identities currently logged in on each side of
// the platform: the company authoring surveys and the user taking them.
package session

import (
	"errors"
	"sync"

	"github.com/surveypro/saas-backend/db"
	"go.vocdoni.io/dvote/log"
)

// Session keeps the current company and current user pointers and mirrors
// them to the storage it is created with. Persistence failures are logged
// and never undo the in-memory change.
type Session struct {
	store   db.Storage
	mtx     sync.RWMutex
	company *db.Company
	user    *db.User
}

// New creates a session and restores both pointers from the store. A
// missing or unreadable pointer means nobody is logged in.
func New(store db.Storage) *Session {
	s := &Session{store: store}
	if store == nil {
		return s
	}
	var company *db.Company
	if err := store.Load(db.CurrentCompanyKey, &company); err == nil {
		s.company = company
	} else if !errors.Is(err, db.ErrNotFound) {
		log.Warnw("could not restore current company", "error", err)
	}
	var user *db.User
	if err := store.Load(db.CurrentUserKey, &user); err == nil {
		s.user = user
	} else if !errors.Is(err, db.ErrNotFound) {
		log.Warnw("could not restore current user", "error", err)
	}
	return s
}

// Company returns a copy of the current company or nil.
func (s *Session) Company() *db.Company {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.company.Clone()
}

// SetCompany replaces the current company. Passing nil logs it out.
func (s *Session) SetCompany(company *db.Company) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.company = company.Clone()
	s.persist(db.CurrentCompanyKey, s.company, company == nil)
}

// User returns a copy of the current user or nil.
func (s *Session) User() *db.User {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.user.Clone()
}

// SetUser replaces the current user. Passing nil logs it out.
func (s *Session) SetUser(user *db.User) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.user = user.Clone()
	s.persist(db.CurrentUserKey, s.user, user == nil)
}

func (s *Session) persist(key string, v any, remove bool) {
	if s.store == nil {
		return
	}
	var err error
	if remove {
		err = s.store.Delete(key)
	} else {
		err = s.store.Save(key, v)
	}
	if err != nil {
		log.Warnw("could not persist session", "key", key, "error", err)
	}
}
