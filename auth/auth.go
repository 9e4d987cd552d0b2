// Package auth checks account credentials for company and user logins.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/surveypro/saas-backend/db"
	"go.vocdoni.io/dvote/log"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned when the password does not match.
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	// ErrPasswordTooShort is returned when registering a password shorter
	// than MinPasswordLength.
	ErrPasswordTooShort = fmt.Errorf("password too short")
)

// MinPasswordLength is the shortest password the bcrypt authenticator
// accepts on registration.
const MinPasswordLength = 6

// Authenticator registers and verifies the password bound to an account.
// Account ids are scoped by the caller (for example "company:<email>").
type Authenticator interface {
	Register(accountID, password string) error
	Verify(accountID, password string) error
}

// AccountID builds the id the stores use to register credentials: the
// account kind plus the normalized email.
func AccountID(kind, email string) string {
	return kind + ":" + strings.ToLower(strings.TrimSpace(email))
}

// EmailOnly is the demo authenticator: any password is accepted, so a
// login only needs a known email.
type EmailOnly struct{}

// Register accepts any password.
func (EmailOnly) Register(string, string) error { return nil }

// Verify accepts any password.
func (EmailOnly) Verify(string, string) error { return nil }

// Bcrypt keeps salted bcrypt hashes of the passwords, persisted as a
// single snapshot under the credentials key.
type Bcrypt struct {
	store  db.Storage
	cost   int
	mtx    sync.RWMutex
	hashes map[string][]byte
}

// NewBcrypt loads the stored hashes. A cost of zero uses bcrypt.DefaultCost.
func NewBcrypt(store db.Storage, cost int) (*Bcrypt, error) {
	if store == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b := &Bcrypt{store: store, cost: cost, hashes: map[string][]byte{}}
	if err := store.Load(db.CredentialsKey, &b.hashes); err != nil && !errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("could not load credentials: %w", err)
	}
	return b, nil
}

// Register stores the hash of password for the account, replacing any
// previous one.
func (b *Bcrypt) Register(accountID, password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return fmt.Errorf("could not hash password: %w", err)
	}
	b.mtx.Lock()
	defer b.mtx.Unlock()
	b.hashes[accountID] = hash
	if err := b.store.Save(db.CredentialsKey, b.hashes); err != nil {
		log.Warnw("could not persist credentials", "error", err)
	}
	return nil
}

// Verify checks password against the stored hash of the account.
func (b *Bcrypt) Verify(accountID, password string) error {
	b.mtx.RLock()
	hash, ok := b.hashes[accountID]
	b.mtx.RUnlock()
	if !ok {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Missing returns the accounts of the list without a stored hash.
func (b *Bcrypt) Missing(accountIDs ...string) []string {
	b.mtx.RLock()
	defer b.mtx.RUnlock()
	var missing []string
	for _, id := range accountIDs {
		if _, ok := b.hashes[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// Seed registers password for the accounts of the list without a stored
// hash, such as the demo accounts of the seed data. Existing hashes are
// kept. It returns how many accounts were seeded.
func (b *Bcrypt) Seed(password string, accountIDs ...string) (int, error) {
	if len(password) < MinPasswordLength {
		return 0, ErrPasswordTooShort
	}
	missing := b.Missing(accountIDs...)
	hashes := make(map[string][]byte, len(missing))
	for _, id := range missing {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
		if err != nil {
			return 0, fmt.Errorf("could not hash password: %w", err)
		}
		hashes[id] = hash
	}
	if len(hashes) == 0 {
		return 0, nil
	}
	b.mtx.Lock()
	defer b.mtx.Unlock()
	for id, hash := range hashes {
		if _, ok := b.hashes[id]; !ok {
			b.hashes[id] = hash
		}
	}
	if err := b.store.Save(db.CredentialsKey, b.hashes); err != nil {
		log.Warnw("could not persist credentials", "error", err)
	}
	return len(hashes), nil
}
