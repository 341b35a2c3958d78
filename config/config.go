package config

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	AppName           string `json:"app_name"`
	ListenIP          string `json:"listen_ip"`
	ListenPort        int    `json:"listen_port"`
	SessionKey        string `json:"session_key"`
	DatabasePath      string `json:"database_path"`
	LogLevel          string `json:"log_level"`
	SecureCookies     bool   `json:"secure_cookies"`
	SignupCaptcha     bool   `json:"signup_captcha"`
	RequestsPerMinute int    `json:"requests_per_minute"`
	I18nPath          string `json:"i18n_path"`
	StaticDir         string `json:"static_dir"`
}

var AppConfig Config

// Default returns the configuration used for any field the file leaves unset.
func Default() Config {
	return Config{
		AppName:           "BookHive",
		ListenIP:          "127.0.0.1",
		ListenPort:        8080,
		DatabasePath:      "./library.db",
		LogLevel:          "info",
		RequestsPerMinute: 100,
		I18nPath:          "i18n",
		StaticDir:         "static",
	}
}

func LoadConfig(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	cfg := Default()
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return err
	}

	// A .env file is optional
	_ = godotenv.Load()

	if envKey := os.Getenv("BOOKHIVE_SESSION_KEY"); envKey != "" {
		cfg.SessionKey = envKey
	}
	if envDB := os.Getenv("BOOKHIVE_DATABASE_PATH"); envDB != "" {
		cfg.DatabasePath = envDB
	}

	if cfg.SessionKey == "" || cfg.SessionKey == "CHANGE_ME_IN_PRODUCTION" {
		log.Println("WARNING: No session key configured. Generating a random key. Sessions will be invalidated on restart.")
		randomKey := make([]byte, 32)
		if _, err := rand.Read(randomKey); err != nil {
			return err
		}
		cfg.SessionKey = hex.EncodeToString(randomKey)
	}

	AppConfig = cfg
	return nil
}

// Addr is the host:port the HTTP server listens on.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.ListenIP, c.ListenPort)
}
