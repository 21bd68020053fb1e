package runtime

import (
	"time"

	"github.com/dmitrymomot/transitionkit/pkg/httpserver"
	"github.com/dmitrymomot/transitionkit/pkg/pg"
	"github.com/dmitrymomot/transitionkit/pkg/redis"
)

// Config is loaded with config.Load[runtime.Config]().
type Config struct {
	Environment string `env:"APP_ENV" envDefault:"development"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"transitionkit"`
	LogLevel    string `env:"LOG_LEVEL"`
	LogFormat   string `env:"LOG_FORMAT"`

	// AutoMigrate applies pending audit migrations during New.
	AutoMigrate bool `env:"AUTO_MIGRATE" envDefault:"true"`

	RolesFile     string `env:"ROLES_FILE"`
	TemplatesFile string `env:"NOTIFICATION_TEMPLATES_FILE"`

	NotificationRetention time.Duration `env:"NOTIFICATION_RETENTION" envDefault:"720h"`
	NotifySkipActor       bool          `env:"NOTIFY_SKIP_ACTOR" envDefault:"false"`
	WebhookURL            string        `env:"NOTIFICATION_WEBHOOK_URL"`
	WebhookSecret         string        `env:"NOTIFICATION_WEBHOOK_SECRET"`
	WebhookRetries        int           `env:"NOTIFICATION_WEBHOOK_RETRIES" envDefault:"3"`
	WebhookDeadline       time.Duration `env:"NOTIFICATION_WEBHOOK_DEADLINE" envDefault:"5s"`

	// AuditFilterMetadata strips or masks sensitive keys before audit
	// rows are written.
	AuditFilterMetadata bool `env:"AUDIT_FILTER_METADATA" envDefault:"true"`

	Postgres pg.Config
	Redis    redis.Config
	HTTP     httpserver.Config
}
