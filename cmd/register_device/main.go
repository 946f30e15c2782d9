// Command register_device registers a sync device directly in the database,
// so a fresh install can pair KOReader before the server ever runs.
// Usage: go run cmd/register_device/main.go -name kindle -password secret [-db path/to/kompanion.db]
package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"

	"github.com/dengxuezhao/kompanion/internal/auth"
	"github.com/dengxuezhao/kompanion/internal/config"
	"github.com/dengxuezhao/kompanion/internal/database"
	"github.com/dengxuezhao/kompanion/internal/database/devices"
	"github.com/dengxuezhao/kompanion/internal/database/users"
)

func main() {
	dbPath := flag.String("db", config.DefaultDatabasePath, "path to the database file")
	name := flag.String("name", "", "device name")
	password := flag.String("password", "", "device password")
	flag.Parse()

	if *name == "" || *password == "" {
		log.Fatal("both -name and -password are required")
	}

	db, err := database.NewDatabase(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	svc := auth.NewService(devices.NewRepository(db.DB), users.NewRepository(db.DB), config.Auth{}, logger)
	if _, err := svc.RegisterDevice(context.Background(), *name, *password); err != nil {
		log.Fatalf("Failed to register device: %v", err)
	}
	log.Printf("Device %q registered", *name)
}
