package config

import (
	"github.com/spf13/viper"
)

// StorageType selects the backend used for book and statistics bytes.
type StorageType string

const (
	StorageTypeDatabase   StorageType = "database"   // blob table in the relational store
	StorageTypeFilesystem StorageType = "filesystem" // directory tree under a configured root
	StorageTypeMemory     StorageType = "memory"     // volatile map, testing only
)

type (
	Config struct {
		HTTP
		Auth
		Database
		BookStorage
		Global
	}

	HTTP struct {
		Port int32
		Host string
	}
	Auth struct {
		// Admin credential for the management API. Devices authenticate
		// separately against their stored digests.
		Username string
		Password string

		BcryptCost int
	}
	Database struct {
		Path string
	}
	BookStorage struct {
		Type StorageType
		Path string // filesystem root, used only when Type is "filesystem"
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
)

// DefaultDatabasePath is where the sqlite database lives unless overridden.
const DefaultDatabasePath = "./kompanion.db"

func NewConfig() *Config {
	v := viper.New()
	v.SetEnvPrefix("KOMPANION")
	v.AutomaticEnv()

	v.SetDefault("port", 8080)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("bstorage_type", string(StorageTypeDatabase))
	v.SetDefault("bstorage_path", "")
	v.SetDefault("auth_username", "")
	v.SetDefault("auth_password", "")
	v.SetDefault("auth_bcrypt_cost", 12)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Auth: Auth{
			Username:   v.GetString("AUTH_USERNAME"),
			Password:   v.GetString("AUTH_PASSWORD"),
			BcryptCost: v.GetInt("AUTH_BCRYPT_COST"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		BookStorage: BookStorage{
			Type: StorageType(v.GetString("BSTORAGE_TYPE")),
			Path: v.GetString("BSTORAGE_PATH"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
	}
}
