package database

import (
	"strings"
	"testing"

	"github.com/iliyamo/postboard-api/internal/config"
	"github.com/iliyamo/postboard-api/internal/model"
)

func TestMySQLDSN(t *testing.T) {
	dsn := MySQLDSN(config.Config{
		DBUser: "app", DBPass: "pw", DBHost: "db", DBPort: "3306", DBName: "postboard",
	})
	for _, part := range []string{"app:pw@tcp(db:3306)/postboard", "parseTime=true", "charset=utf8mb4"} {
		if !strings.Contains(dsn, part) {
			t.Fatalf("dsn %q missing %q", dsn, part)
		}
	}
}

func TestOpenSQLiteAndMigrate(t *testing.T) {
	db, err := Open(config.Config{DBDriver: "sqlite", SQLitePath: "file:dbtest?mode=memory&cache=shared"})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = Close(db) })

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	for _, m := range []any{&model.User{}, &model.Token{}, &model.Post{}, &model.Comment{}} {
		if !db.Migrator().HasTable(m) {
			t.Fatalf("table for %T missing", m)
		}
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(config.Config{DBDriver: "oracle"}); err == nil {
		t.Fatal("expected error")
	}
}
