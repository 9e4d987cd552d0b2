// Package users implements the user store: the registered survey takers,
// their session, their favorite surveys and the surveys they completed.
package users

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/surveypro/saas-backend/auth"
	"github.com/surveypro/saas-backend/db"
	"github.com/surveypro/saas-backend/internal"
	"github.com/surveypro/saas-backend/session"
	"go.vocdoni.io/dvote/log"
)

// UserAccount is the account kind used to register user credentials.
const UserAccount = "user"

var (
	// ErrDuplicateEmail is returned when registering an email that another
	// user already uses.
	ErrDuplicateEmail = fmt.Errorf("email already registered")
	// ErrNoSession is returned by the operations acting on the current user
	// when nobody is logged in.
	ErrNoSession = fmt.Errorf("no user logged in")
)

// Config holds the collaborators of the store, with the same defaults as
// the survey store.
type Config struct {
	Storage       db.Storage
	Session       *session.Session
	Authenticator auth.Authenticator
}

// Store holds the user collection.
type Store struct {
	storage db.Storage
	session *session.Session
	auth    auth.Authenticator
	now     func() time.Time

	mtx   sync.RWMutex
	users []db.User
}

// New creates the store and restores the user collection, falling back to
// the seed users.
func New(conf *Config) *Store {
	if conf == nil {
		conf = &Config{}
	}
	s := &Store{
		storage: conf.Storage,
		session: conf.Session,
		auth:    conf.Authenticator,
		now:     time.Now,
	}
	if s.session == nil {
		s.session = session.New(nil)
	}
	if s.auth == nil {
		s.auth = auth.EmailOnly{}
	}
	s.users = db.LoadOrSeed(s.storage, db.UsersKey, db.SeedUsers)
	log.Infow("user store ready", "users", len(s.users))
	return s
}

// RegisterUser signs a survey taker up and logs them in.
func (s *Store) RegisterUser(name, email, password string) (*db.User, error) {
	s.mtx.Lock()
	if s.userByEmail(email) != nil {
		s.mtx.Unlock()
		return nil, ErrDuplicateEmail
	}
	if err := s.auth.Register(auth.AccountID(UserAccount, email), password); err != nil {
		s.mtx.Unlock()
		return nil, fmt.Errorf("could not register credentials: %w", err)
	}
	s.users = append(s.users, db.User{
		ID:               uuid.NewString(),
		Name:             name,
		Email:            internal.NormalizeEmail(email),
		CreatedAt:        s.now(),
		FavoriteSurveys:  []string{},
		CompletedSurveys: []string{},
	})
	user := s.users[len(s.users)-1].Clone()
	s.persist()
	s.mtx.Unlock()

	s.session.SetUser(user)
	log.Infow("user registered", "id", user.ID, "email", user.Email)
	return user, nil
}

// LoginUser opens a session for the user with the given email, ignoring
// case. Unknown emails and rejected passwords return db.ErrNotFound.
func (s *Store) LoginUser(email, password string) (*db.User, error) {
	s.mtx.RLock()
	user := s.userByEmail(email).Clone()
	s.mtx.RUnlock()
	if user == nil {
		return nil, db.ErrNotFound
	}
	if err := s.auth.Verify(auth.AccountID(UserAccount, user.Email), password); err != nil {
		log.Debugw("user login rejected", "email", user.Email, "error", err)
		return nil, db.ErrNotFound
	}
	s.session.SetUser(user)
	return user, nil
}

// Logout closes the user session.
func (s *Store) Logout() {
	s.session.SetUser(nil)
}

// CurrentUser returns the user logged in, or nil.
func (s *Store) CurrentUser() *db.User {
	return s.session.User()
}

// User returns a copy of the user with the given id.
func (s *Store) User(id string) (*db.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	user := s.user(id)
	if user == nil {
		return nil, db.ErrNotFound
	}
	return user.Clone(), nil
}

// Users returns a copy of every user.
func (s *Store) Users() []db.User {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	result := make([]db.User, 0, len(s.users))
	for i := range s.users {
		result = append(result, *s.users[i].Clone())
	}
	return result
}

// ToggleFavorite adds the survey to the favorites of the current user, or
// removes it if it was already there.
func (s *Store) ToggleFavorite(surveyID string) error {
	current := s.session.User()
	if current == nil {
		return ErrNoSession
	}
	_, err := s.ToggleFavoriteFor(current.ID, surveyID)
	return err
}

// ToggleFavoriteFor toggles the survey in the favorites of the given user
// and returns whether it is a favorite afterwards.
func (s *Store) ToggleFavoriteFor(userID, surveyID string) (bool, error) {
	var favorite bool
	err := s.update(userID, func(u *db.User) {
		if u.HasFavorite(surveyID) {
			u.FavoriteSurveys = remove(u.FavoriteSurveys, surveyID)
			return
		}
		u.FavoriteSurveys = append(u.FavoriteSurveys, surveyID)
		favorite = true
	})
	return favorite, err
}

// IsFavorite returns true if the current user marked the survey as a
// favorite. Without a session it is always false.
func (s *Store) IsFavorite(surveyID string) bool {
	current := s.session.User()
	return current != nil && current.HasFavorite(surveyID)
}

// MarkCompleted records that the user completed the survey. Marking it
// twice has no further effect.
func (s *Store) MarkCompleted(userID, surveyID string) error {
	return s.update(userID, func(u *db.User) {
		if !u.HasCompleted(surveyID) {
			u.CompletedSurveys = append(u.CompletedSurveys, surveyID)
		}
	})
}

// update applies fn to the stored user, persists the collection and keeps
// the session copy in sync when the user is logged in.
func (s *Store) update(userID string, fn func(*db.User)) error {
	s.mtx.Lock()
	user := s.user(userID)
	if user == nil {
		s.mtx.Unlock()
		return db.ErrNotFound
	}
	fn(user)
	updated := user.Clone()
	s.persist()
	s.mtx.Unlock()

	if current := s.session.User(); current != nil && current.ID == userID {
		s.session.SetUser(updated)
	}
	return nil
}

func (s *Store) persist() {
	db.SaveSnapshot(s.storage, db.UsersKey, s.users)
}

func (s *Store) user(id string) *db.User {
	for i := range s.users {
		if s.users[i].ID == id {
			return &s.users[i]
		}
	}
	return nil
}

func (s *Store) userByEmail(email string) *db.User {
	for i := range s.users {
		if db.SameEmail(s.users[i].Email, email) {
			return &s.users[i]
		}
	}
	return nil
}

func remove(list []string, item string) []string {
	result := make([]string, 0, len(list))
	for _, v := range list {
		if v != item {
			result = append(result, v)
		}
	}
	return result
}
