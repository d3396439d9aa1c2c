package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"fleet-crm/pkg/database"
)

// DBTest provides a real MySQL connection for integration tests.
// It uses DATABASE_URL_TEST if set, otherwise DATABASE_URL. Tests are skipped if neither is.
type DBTest struct {
	T  *testing.T
	DB *database.DB
}

func NewDBTest(t *testing.T) *DBTest {
	t.Helper()
	url := os.Getenv("DATABASE_URL_TEST")
	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}
	if url == "" {
		t.Skip("DATABASE_URL_TEST or DATABASE_URL not set; skipping integration tests")
	}
	db, err := database.New(url)
	if err != nil {
		t.Fatalf("failed to connect test database: %v", err)
	}
	d := &DBTest{T: t, DB: db}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := db.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	d.Truncate()
	t.Cleanup(d.Close)
	return d
}

func (d *DBTest) Close() {
	_ = d.DB.Close()
}

// Truncate wipes every CRM table.
func (d *DBTest) Truncate() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := d.DB.Truncate(ctx); err != nil {
		d.T.Fatalf("truncate: %v", err)
	}
}
