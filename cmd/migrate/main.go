package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/roackb2/snowdream/config"
	"github.com/roackb2/snowdream/internal/app/wiring"
)

func main() {
	env := flag.String("env", "dev", "config profile")
	up := flag.Bool("up", false, "Run migrations up")
	down := flag.Bool("down", false, "Run migrations down")
	version := flag.Int("version", -1, "Migrate to a specific version")
	dumpSchema := flag.Bool("dump", false, "Dump database schema after migration")
	flag.Parse()

	if err := config.LoadConfig(*env); err != nil {
		log.Fatal("Error loading configuration:", err)
	}
	dbURL := wiring.DatabaseConfig(config.Config).URL()

	m, err := migrate.New("file://db/migrations", dbURL)
	if err != nil {
		log.Fatal("Error creating migrate instance:", err)
	}
	defer m.Close()

	switch {
	case *up:
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal("Error running migrations up:", err)
		}
		fmt.Println("Migrations up completed successfully")
	case *down:
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal("Error running migrations down:", err)
		}
		fmt.Println("Migrations down completed successfully")
	case *version >= 0:
		if err := m.Migrate(uint(*version)); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal("Error migrating to specific version:", err)
		}
		fmt.Printf("Migration to version %d completed successfully\n", *version)
	default:
		fmt.Println("Please specify either -up, -down, or -version")
		os.Exit(1)
	}

	if *dumpSchema {
		if err := dumpDatabaseSchema(dbURL); err != nil {
			log.Fatal("Error dumping database schema:", err)
		}
		fmt.Println("Database schema dumped successfully")
	}
}

// dumpDatabaseSchema writes db/schema.sql with pg_dump.
func dumpDatabaseSchema(dbURL string) error {
	schemaFile := filepath.Join("db", "schema.sql")
	file, err := os.Create(schemaFile)
	if err != nil {
		return fmt.Errorf("failed to create schema file: %w", err)
	}
	defer file.Close()

	cmd := exec.Command("pg_dump", "-s", "-O", "-x", dbURL)
	cmd.Stdout = file
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to dump schema: %w", err)
	}
	return nil
}
