package config

import (
	"errors"
	"flag"
	"net"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr         string
	DBUrl        string
	TokenSecret  string
	TokenTTL     time.Duration
	TokenCleanup string
	LogLevel     string
	LogFormat    string
	Debug        bool
}

// LoadEnv loads variables from the given .env files (or ./.env) without
// overriding those already set. A missing file is not an error.
func LoadEnv(files ...string) error {
	err := godotenv.Load(files...)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func ParseFlags() (Config, error) {
	return Parse(os.Args[1:])
}

// Parse reads the command line; every flag defaults to its QFORMS_*
// environment variable, then to a built-in value.
func Parse(args []string) (cfg Config, err error) {
	fs := flag.NewFlagSet("quick-forms", flag.ContinueOnError)

	var host string
	fs.StringVar(&host, "host", getEnv("QFORMS_HOST", "0.0.0.0"), "listen host name")
	var port uint
	fs.UintVar(&port, "port", uint(getEnvInt("QFORMS_PORT", 80)), "listen port number")
	fs.StringVar(&cfg.DBUrl, "db-url", getEnv("QFORMS_DB_URL", "qforms.sqlite"), "path to SQLite3 DB file")
	fs.StringVar(&cfg.TokenSecret, "token-secret", getEnv("QFORMS_TOKEN_SECRET", ""), "secret key for token encryption and decryption")
	var ttl uint
	fs.UintVar(&ttl, "token-ttl", uint(getEnvInt("QFORMS_TOKEN_TTL", 120)), "token TTL in seconds")
	fs.StringVar(&cfg.TokenCleanup, "token-cleanup", getEnv("QFORMS_TOKEN_CLEANUP", "@hourly"), "cron spec for purging expired refresh tokens")
	fs.StringVar(&cfg.LogLevel, "log-level", getEnv("QFORMS_LOG_LEVEL", "info"), "log level (trace, debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", getEnv("QFORMS_LOG_FORMAT", "text"), "log output format (text, json)")
	fs.BoolVar(&cfg.Debug, "debug", getEnv("QFORMS_DEBUG", "") == "true", "log at DEBUG level")

	if err = fs.Parse(args); err != nil {
		return
	}

	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	cfg.TokenTTL = time.Duration(ttl) * time.Second
	if cfg.Debug {
		cfg.LogLevel = "debug"
	}

	if cfg.TokenSecret == "" {
		err = errors.New("missing parameter -token-secret")
	}

	return
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return n
}
