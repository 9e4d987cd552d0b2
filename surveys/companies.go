package surveys

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/surveypro/saas-backend/auth"
	"github.com/surveypro/saas-backend/db"
	"github.com/surveypro/saas-backend/internal"
	"go.vocdoni.io/dvote/log"
)

// AddCompany creates a company without registering credentials or opening
// a session. Emails must be unique.
func (s *Store) AddCompany(nc *NewCompany) (string, error) {
	if nc == nil {
		return "", db.ErrInvalidData
	}
	if _, err := db.PackageByTier(nc.Subscription); err != nil {
		return "", err
	}
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.companyByEmail(nc.Email) != nil {
		return "", ErrDuplicateEmail
	}
	company := s.newCompany(nc.Name, nc.Email, nc.Subscription)
	db.SaveSnapshot(s.storage, db.CompaniesKey, s.companies)
	return company.ID, nil
}

// RegisterCompany signs a company up and logs it in. The email is matched
// against existing companies ignoring case; on conflict nothing changes.
func (s *Store) RegisterCompany(name, email, password string, tier db.PackageTier) (*db.Company, error) {
	if _, err := db.PackageByTier(tier); err != nil {
		return nil, err
	}
	s.mtx.Lock()
	if s.companyByEmail(email) != nil {
		s.mtx.Unlock()
		return nil, ErrDuplicateEmail
	}
	if err := s.auth.Register(auth.AccountID(CompanyAccount, email), password); err != nil {
		s.mtx.Unlock()
		return nil, fmt.Errorf("could not register credentials: %w", err)
	}
	company := s.newCompany(name, email, tier).Clone()
	db.SaveSnapshot(s.storage, db.CompaniesKey, s.companies)
	s.mtx.Unlock()

	s.session.SetCompany(company)
	log.Infow("company registered", "id", company.ID, "email", company.Email, "package", company.Subscription)
	return company, nil
}

// LoginCompany opens a session for the company with the given email, after
// the authenticator accepts the password. An unknown email or a rejected
// password return db.ErrNotFound.
func (s *Store) LoginCompany(email, password string) (*db.Company, error) {
	s.mtx.RLock()
	company := s.companyByEmail(email).Clone()
	s.mtx.RUnlock()
	if company == nil {
		return nil, db.ErrNotFound
	}
	if err := s.auth.Verify(auth.AccountID(CompanyAccount, company.Email), password); err != nil {
		log.Debugw("company login rejected", "email", company.Email, "error", err)
		return nil, db.ErrNotFound
	}
	s.session.SetCompany(company)
	return company, nil
}

// Logout closes the company session.
func (s *Store) Logout() {
	s.session.SetCompany(nil)
}

// CurrentCompany returns the company logged in, or nil.
func (s *Store) CurrentCompany() *db.Company {
	return s.session.Company()
}

// Company returns a copy of the company with the given id.
func (s *Store) Company(id string) (*db.Company, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	company := s.company(id)
	if company == nil {
		return nil, db.ErrNotFound
	}
	return company.Clone(), nil
}

// CompanyByEmail returns a copy of the company registered with the email,
// ignoring case.
func (s *Store) CompanyByEmail(email string) (*db.Company, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	company := s.companyByEmail(email)
	if company == nil {
		return nil, db.ErrNotFound
	}
	return company.Clone(), nil
}

// Companies returns a copy of every company.
func (s *Store) Companies() []db.Company {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	result := make([]db.Company, 0, len(s.companies))
	for i := range s.companies {
		result = append(result, *s.companies[i].Clone())
	}
	return result
}

// SetCompanySubscription changes the package of the company. When the
// company is the one logged in, the session is refreshed too.
func (s *Store) SetCompanySubscription(companyID string, tier db.PackageTier) error {
	if _, err := db.PackageByTier(tier); err != nil {
		return err
	}
	s.mtx.Lock()
	company := s.company(companyID)
	if company == nil {
		s.mtx.Unlock()
		return db.ErrNotFound
	}
	company.Subscription = tier
	updated := company.Clone()
	db.SaveSnapshot(s.storage, db.CompaniesKey, s.companies)
	s.mtx.Unlock()

	if current := s.session.Company(); current != nil && current.ID == companyID {
		s.session.SetCompany(updated)
	}
	log.Infow("company package updated", "id", companyID, "package", tier)
	return nil
}

// newCompany appends a company to the collection. The caller must hold the
// write lock.
func (s *Store) newCompany(name, email string, tier db.PackageTier) *db.Company {
	s.companies = append(s.companies, db.Company{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        internal.NormalizeEmail(email),
		Subscription: tier,
		Surveys:      []string{},
		CreatedAt:    s.now(),
	})
	return &s.companies[len(s.companies)-1]
}

func (s *Store) company(id string) *db.Company {
	for i := range s.companies {
		if s.companies[i].ID == id {
			return &s.companies[i]
		}
	}
	return nil
}

func (s *Store) companyByEmail(email string) *db.Company {
	for i := range s.companies {
		if db.SameEmail(s.companies[i].Email, email) {
			return &s.companies[i]
		}
	}
	return nil
}
