package config // package config loads application configuration from environment variables

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig" // envconfig maps environment variables onto struct fields
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable named in its envconfig tag.  Fields marked
// required cause Load to fail when the variable is unset; the rest fall
// back to their defaults so the API can run locally with only a database.
type Config struct {
	Env  string `envconfig:"APP_ENV" default:"dev"`   // application environment (e.g. "dev", "prod")
	Port string `envconfig:"APP_PORT" default:"8000"` // HTTP port to listen on

	DBUser string `envconfig:"DB_USER" required:"true"` // database username
	DBPass string `envconfig:"DB_PASS"`                  // database password (optional)
	DBHost string `envconfig:"DB_HOST" default:"127.0.0.1"`
	DBPort string `envconfig:"DB_PORT" default:"3306"`
	DBName string `envconfig:"DB_NAME" required:"true"`

	// JWTSecret verifies bearer tokens issued by the identity provider.
	// When empty, authentication middleware is disabled.
	JWTSecret string `envconfig:"JWT_SECRET"`

	StripeSecretKey     string `envconfig:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `envconfig:"STRIPE_WEBHOOK_SECRET"`
	StripeSuccessURL    string `envconfig:"STRIPE_SUCCESS_URL" default:"https://checkout.stripe.com/complete"`
	StripeCancelURL     string `envconfig:"STRIPE_CANCEL_URL" default:"https://checkout.stripe.com/cancel"`
	StripeCurrency      string `envconfig:"STRIPE_CURRENCY" default:"eur"`

	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`

	RabbitURL      string `envconfig:"RABBITMQ_URL"`
	EventsExchange string `envconfig:"BOOKING_EXCHANGE" default:"booking.exchange"`
	EventsQueue    string `envconfig:"BOOKING_EVENTS_QUEUE" default:"booking.events.log"`

	StaticDir   string `envconfig:"STATIC_DIR" default:"static"`
	CORSOrigins string `envconfig:"CORS_ORIGINS" default:"http://localhost:5173,http://127.0.0.1:5173,http://localhost:8081,http://127.0.0.1:8081,http://localhost:19006"`

	ChatHistorySize int `envconfig:"CHAT_HISTORY_SIZE" default:"100"`
	// ChatWriteTimeoutSec bounds a single websocket send; 0 disables the bound.
	ChatWriteTimeoutSec int `envconfig:"CHAT_WRITE_TIMEOUT_SEC" default:"10"`
}

// Load reads configuration values from the environment.  It returns an
// error naming the first missing, blank or malformed variable.
func Load() (Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return c, err
	}
	// envconfig's required only checks presence; DB_USER="" still passes.
	for _, v := range []struct{ name, val string }{{"DB_USER", c.DBUser}, {"DB_NAME", c.DBName}} {
		if strings.TrimSpace(v.val) == "" {
			return c, fmt.Errorf("required key %s has a blank value", v.name)
		}
	}
	return c, nil
}

// Origins splits CORSOrigins into a clean list for the CORS middleware.
func (c Config) Origins() []string {
	out := []string{}
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// AuthEnabled reports whether bearer tokens should be enforced.
func (c Config) AuthEnabled() bool { return c.JWTSecret != "" }
