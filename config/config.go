package config

import (
	"errors"
	"flag"
	"net"
	"os"
	"regexp"
	"strconv"
	"time"
)

type Config struct {
	Addr          string
	DBUrl         string
	TokenSecret   string
	TokenTTL      time.Duration
	Debug         bool
	AdminUser     string
	AdminPassword string
	// SubmitRate is the number of survey submissions accepted per minute
	// from a single client address. Zero disables the limit.
	SubmitRate int
}

const (
	DefaultAdminUser     = "admin"
	DefaultAdminPassword = "admin123"
)

// ParseFlags reads the command line, falling back to SURVEY_* environment
// variables (and PORT) for anything not given as a flag.
func ParseFlags(args []string) (cfg Config, err error) {
	fs := flag.NewFlagSet("survey-desk", flag.ContinueOnError)

	var host string
	fs.StringVar(&host, "host", envString("SURVEY_HOST", "0.0.0.0"), "listen host name")
	var port uint
	fs.UintVar(&port, "port", envUint("PORT", 8080), "listen port number")
	fs.StringVar(&cfg.DBUrl, "db-url", envString("SURVEY_DB_URL", "survey.sqlite"), "path to SQLite3 DB file")
	fs.StringVar(&cfg.TokenSecret, "token-secret", os.Getenv("SURVEY_TOKEN_SECRET"), "secret key for token encryption and decryption")
	var ttl uint
	fs.UintVar(&ttl, "token-ttl", envUint("SURVEY_TOKEN_TTL", 120), "access token TTL in seconds")
	fs.BoolVar(&cfg.Debug, "debug", os.Getenv("SURVEY_DEBUG") != "", "log at DEBUG level")
	fs.StringVar(&cfg.AdminUser, "admin-user", envString("SURVEY_ADMIN_USER", DefaultAdminUser), "username of the admin seeded on first start")
	fs.StringVar(&cfg.AdminPassword, "admin-password", envString("SURVEY_ADMIN_PASSWORD", DefaultAdminPassword), "password of the admin seeded on first start")
	var rate uint
	fs.UintVar(&rate, "submit-rate", envUint("SURVEY_SUBMIT_RATE", 30), "survey submissions per minute per client, 0 to disable")

	if err = fs.Parse(args); err != nil {
		return
	}

	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	cfg.TokenTTL = time.Duration(ttl) * time.Second
	cfg.SubmitRate = int(rate)

	switch {
	case cfg.TokenSecret == "":
		err = errors.New("missing parameter -token-secret (or SURVEY_TOKEN_SECRET)")
	case cfg.AdminUser == "":
		err = errors.New("parameter -admin-user must not be empty")
	case cfg.AdminPassword == "":
		err = errors.New("parameter -admin-password must not be empty")
	}

	return
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}

// UsesDefaultAdmin reports whether the seeded admin keeps the well-known
// first-start credentials.
func (cfg Config) UsesDefaultAdmin() bool {
	return cfg.AdminUser == DefaultAdminUser && cfg.AdminPassword == DefaultAdminPassword
}

func envString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func envUint(key string, def uint) uint {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return def
	}
	return uint(n)
}
