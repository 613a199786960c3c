// Package testutil spins up throwaway postgres containers for dao tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"gorm.io/gorm"

	"github.com/apocighol/cevicheria-api/internal/db"
)

// StartPostgres runs a postgres container and returns a migrated gorm handle.
// Tests are skipped when no docker daemon is reachable, so the unit suite
// stays runnable on machines without docker.
func StartPostgres(t *testing.T) *gorm.DB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker unavailable, skipping: %v", err)
	}
	if err = pool.Client.Ping(); err != nil {
		t.Skipf("docker unavailable, skipping: %v", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=test",
			"POSTGRES_PASSWORD=test",
			"POSTGRES_DB=cevicheria_test",
			"listen_addresses = '*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("pool.RunWithOptions -> %v", err)
	}

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("pool.Purge -> %v", err)
		}
	})

	dsn := fmt.Sprintf("host=localhost port=%s user=test password=test dbname=cevicheria_test sslmode=disable",
		resource.GetPort("5432/tcp"),
	)

	var database *gorm.DB
	if err = pool.Retry(func() error {
		database, err = db.OpenPostgresWithURL(dsn)
		return err
	}); err != nil {
		t.Fatalf("pool.Retry -> %v", err)
	}

	return database
}
