package db

import (
	"io/fs"
	"strings"
	"testing"
)

func TestMigrations_Paired(t *testing.T) {
	files, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no embedded migrations")
	}
	names := map[string]bool{}
	for _, f := range files {
		names[f] = true
	}
	for _, f := range files {
		if up, ok := strings.CutSuffix(f, ".up.sql"); ok && !names[up+".down.sql"] {
			t.Errorf("%s has no down migration", f)
		}
	}
}

func TestMigrations_AssetIDUnique(t *testing.T) {
	data, err := migrationsFS.ReadFile("migrations/000001_init.up.sql")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "asset_id         TEXT PRIMARY KEY") {
		t.Error("assets.asset_id must be the primary key so duplicate creates are rejected")
	}
}
