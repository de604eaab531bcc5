package config

import "os"

// Config is everything the client reads from the environment. A .env
// file is loaded by main before this runs; the core owns no persisted
// state of its own.
type Config struct {
	ServerURL  string // upstream websocket endpoint
	ListenAddr string // local control surface
	ArchiveDSN string // postgres DSN; empty disables the archive
	Env        string // "development" | "production"
}

func Load() Config {
	return Config{
		ServerURL:  getenv("SERVER_URL", "ws://localhost:8080/ws"),
		ListenAddr: getenv("LISTEN_ADDR", ":8090"),
		ArchiveDSN: os.Getenv("ARCHIVE_DSN"),
		Env:        getenv("APP_ENV", "development"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
