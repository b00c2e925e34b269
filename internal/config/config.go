package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings"
	"time"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Required values are enforced at startup; the
// rest fall back to defaults suited for local development.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	DBMaxOpenConns int    // connection pool size
	DBAutoMigrate  bool   // run schema migrations on start
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	BcryptCost     int    // bcrypt cost for password hashing

	LogLevel  string // DEBUG, INFO, WARN or ERROR
	LogFormat string // json or text

	AppBaseURL string // public site root used in mail and notification links

	RabbitURL           string // AMQP broker URL; empty disables the mail queue
	MailQueue           string // queue that outbound mail is published to
	MailFrom            string // From header for outbound mail
	MailConsumerEnabled bool   // run the in-process mail consumer

	Notify NotifyConfig
}

// NotifyConfig sizes the background side-effect queue.
type NotifyConfig struct {
	Workers     int           // concurrent workers
	QueueSize   int           // buffered jobs before new ones are dropped
	MaxAttempts int           // attempts per job, 1 disables retries
	Backoff     time.Duration // delay before the first retry, doubled each time
	JobTimeout  time.Duration // per-attempt deadline
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		DBMaxOpenConns: envInt("DB_MAX_OPEN_CONNS", 25),
		DBAutoMigrate:  envBool("DB_AUTO_MIGRATE", true),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		BcryptCost:     mustInt("BCRYPT_COST"),

		LogLevel:  envStr("LOG_LEVEL", "INFO"),
		LogFormat: envStr("LOG_FORMAT", "json"),

		AppBaseURL: strings.TrimRight(envStr("APP_BASE_URL", "http://localhost:3000"), "/"),

		RabbitURL:           rabbitURL(),
		MailQueue:           envStr("MAIL_QUEUE", "email.outbound"),
		MailFrom:            envStr("MAIL_FROM", "Stagebook <no-reply@stagebook.local>"),
		MailConsumerEnabled: envBool("MAIL_CONSUMER_ENABLED", false),

		Notify: NotifyConfig{
			Workers:     envInt("NOTIFY_WORKERS", 4),
			QueueSize:   envInt("NOTIFY_QUEUE_SIZE", 256),
			MaxAttempts: envInt("NOTIFY_MAX_ATTEMPTS", 1),
			Backoff:     envDur("NOTIFY_BACKOFF", 500*time.Millisecond),
			JobTimeout:  envDur("NOTIFY_JOB_TIMEOUT", 10*time.Second),
		},
	}
}

// rabbitURL honours RABBITMQ_URL and the AMQP_URL alias.  An empty result
// means no broker is configured.
func rabbitURL() string {
	if v := os.Getenv("RABBITMQ_URL"); v != "" {
		return v
	}
	return os.Getenv("AMQP_URL")
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
