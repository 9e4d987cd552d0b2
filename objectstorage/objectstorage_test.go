package objectstorage

import (
	"context"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/surveypro/saas-backend/db"
	"github.com/surveypro/saas-backend/test"
)

func TestObjectStorage(t *testing.T) {
	c := qt.New(t)

	// Start a MinIO container for testing
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	container, err := test.StartMinioContainer(ctx)
	c.Assert(err, qt.IsNil)
	defer func() { _ = container.Terminate(ctx) }()

	endpoint, err := container.Endpoint(ctx, "http")
	c.Assert(err, qt.IsNil)

	t.Run("New", func(t *testing.T) {
		c := qt.New(t)
		_, err := New(nil)
		c.Assert(err, qt.Not(qt.IsNil))
		_, err = New(&Config{Endpoint: endpoint})
		c.Assert(err, qt.Not(qt.IsNil))
	})

	client, err := New(&Config{
		Endpoint:  endpoint,
		AccessKey: test.MinioAccessKey,
		SecretKey: test.MinioSecretKey,
		Bucket:    "surveypro-test",
		CacheSize: 2,
	})
	c.Assert(err, qt.IsNil)
	defer client.Close()

	t.Run("SaveLoad", func(t *testing.T) {
		c := qt.New(t)
		var companies []db.Company
		c.Assert(client.Load(db.CompaniesKey, &companies), qt.ErrorIs, db.ErrNotFound)

		c.Assert(client.Save(db.CompaniesKey, db.SeedCompanies()), qt.IsNil)
		c.Assert(client.Load(db.CompaniesKey, &companies), qt.IsNil)
		c.Assert(companies, qt.HasLen, 3)

		// purge the cache so the next read goes to the bucket
		client.Close()
		companies = nil
		c.Assert(client.Load(db.CompaniesKey, &companies), qt.IsNil)
		c.Assert(companies, qt.HasLen, 3)
		c.Assert(companies[2].Email, qt.Equals, "hello@startupventures.com")
	})

	t.Run("Delete", func(t *testing.T) {
		c := qt.New(t)
		user := db.SeedUsers()[0]
		c.Assert(client.Save(db.CurrentUserKey, &user), qt.IsNil)
		c.Assert(client.Delete(db.CurrentUserKey), qt.IsNil)
		var loaded *db.User
		c.Assert(client.Load(db.CurrentUserKey, &loaded), qt.ErrorIs, db.ErrNotFound)
		c.Assert(client.Delete(db.CurrentUserKey), qt.IsNil)
	})
}
