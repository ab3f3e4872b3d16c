package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
	"github.com/orgball2608/giveaway-telegram-bot/internal/migrations"
	"github.com/orgball2608/giveaway-telegram-bot/pkg/config"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

const migrationsDir = "internal/migrations"

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate [up|down|status|reset|version|create <name>]")
	}

	command := os.Args[1]

	// Go migrations are code, create only writes a template.
	if command == "create" {
		if len(os.Args) < 3 {
			log.Fatal("Usage: migrate create <name>")
		}
		if err := goose.Create(nil, migrationsDir, os.Args[2], "go"); err != nil {
			log.Fatalf("Failed to create migration: %v", err)
		}
		return
	}

	cfg, err := config.NewStorage()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, dialect, err := open(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := goose.SetDialect(dialect); err != nil {
		log.Fatalf("Failed to set dialect: %v", err)
	}
	fmt.Printf("Running %s against %s storage\n", command, cfg.Storage.Driver)

	switch command {
	case "up":
		if err := migrations.Up(db, dialect); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		fmt.Println("Migrations applied successfully")
	case "down":
		if err := goose.Down(db, "."); err != nil {
			log.Fatalf("Failed to rollback migration: %v", err)
		}
		fmt.Println("Migration rollback successful")
	case "status":
		if err := goose.Status(db, "."); err != nil {
			log.Fatalf("Failed to get migration status: %v", err)
		}
	case "version":
		if err := goose.Version(db, "."); err != nil {
			log.Fatalf("Failed to get migration version: %v", err)
		}
	case "reset":
		if err := goose.Reset(db, "."); err != nil {
			log.Fatalf("Failed to reset migrations: %v", err)
		}
		fmt.Println("All migrations have been rolled back")
	default:
		log.Fatalf("Unknown command: %s", command)
	}
}

// open connects to the SQL database selected by STORAGE_DRIVER.
func open(cfg *config.Config) (*sql.DB, string, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		db, err := sql.Open("postgres", cfg.GetDSN())
		return db, migrations.DialectPostgres, err
	case config.StorageDriverSQLite:
		db, err := sql.Open("sqlite", cfg.Storage.SQLitePath)
		return db, migrations.DialectSQLite, err
	default:
		return nil, "", fmt.Errorf("storage driver %q has no database to migrate", cfg.Storage.Driver)
	}
}
