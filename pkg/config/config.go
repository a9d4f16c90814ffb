// pkg/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	HTTPAddr string

	// Mongo
	MongoURI     string
	MasterDBName string

	// Token signing
	TokenSecret string
	TokenTTL    time.Duration
}

func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		Env:          env("ORG_ENV", "dev"),
		HTTPAddr:     env("ORG_HTTP_ADDR", ":8080"),
		MongoURI:     env("MONGO_URI", ""),
		MasterDBName: env("MASTER_DB_NAME", "org_master"),
		TokenSecret:  env("TOKEN_SECRET", ""),
		TokenTTL:     envDur("TOKEN_TTL_MIN", 30) * time.Minute,
	}
	if cfg.MongoURI == "" {
		log.Println("[WARN] MONGO_URI not set — using in-memory registry and partitions for dev")
	}
	if cfg.TokenSecret == "" {
		log.Println("[WARN] TOKEN_SECRET not set — using an insecure dev secret")
		cfg.TokenSecret = "dev-insecure-secret"
	}
	return cfg
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envDur(k string, def int) time.Duration {
	if v := os.Getenv(k); v != "" {
		i, _ := strconv.Atoi(v)
		return time.Duration(i)
	}
	return time.Duration(def)
}
