package cmd

import (
	"context"
	"log"

	"github.com/frahmantamala/missiontime/internal/store"
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "to create or upgrade the database schema from the embedded migrations",
	}
	migrateRollback bool

	checkCmd = &cobra.Command{
		RunE:  runCheck,
		Use:   "check",
		Short: "to validate that the database matches the expected schema",
	}
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the schema")
}

func runMigration(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	cfg, err := loadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}

	db, err := store.Connect(cfg.Database, nil)
	if err != nil {
		log.Fatalf("failed to open DB: %v\n", err)
	}
	defer db.Close()

	if migrateRollback {
		if err := store.Rollback(ctx, db); err != nil {
			log.Fatalf("rollback: %v", err)
		}
		log.Println("schema rolled back")
		return nil
	}

	if err := store.Migrate(ctx, db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Printf("schema at version %d\n", store.SchemaVersion)
	return nil
}

func runCheck(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	db, err := store.Open(cfg.Database, nil)
	if err != nil {
		return err
	}
	defer db.Close()

	log.Printf("schema ok (%s, version %d)\n", db.Driver, store.SchemaVersion)
	return nil
}
