package utils

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/rollbar/rollbar-go"
)

// LoggerConfig определяет конфигурацию для логгера
type LoggerConfig struct {
	Format       string   // text or json
	Output       *os.File // defaults to os.Stdout
	EnableColors bool
}

// InitLogger инициализирует и возвращает логгер
func InitLogger(config ...LoggerConfig) *log.Logger {
	var cfg LoggerConfig
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	prefix := "[Learnity] "

	var logger *log.Logger
	if cfg.Format == "json" {
		logger = log.New(cfg.Output, prefix, log.LstdFlags|log.LUTC)
	} else {
		if cfg.EnableColors {
			prefix = "\033[36m" + prefix + "\033[0m"
		}
		logger = log.New(cfg.Output, prefix, log.LstdFlags|log.Lshortfile|log.LUTC)
	}

	return logger
}

// Reporter writes server errors to the logger and, when a token is set, to Rollbar.
type Reporter struct {
	logger  *log.Logger
	enabled bool
}

func NewReporter(logger *log.Logger, token, environment string) *Reporter {
	r := &Reporter{logger: logger, enabled: token != ""}
	if r.enabled {
		rollbar.SetToken(token)
		rollbar.SetEnvironment(environment)
	}
	rollbar.SetEnabled(r.enabled)
	return r
}

func (r *Reporter) Error(c *fiber.Ctx, err error) {
	if r == nil || err == nil {
		return
	}
	extras := map[string]interface{}{}
	if c != nil {
		extras["method"] = c.Method()
		extras["path"] = c.Path()
		if userID, ok := c.Locals(LocalUserID).(uint); ok {
			extras["user_id"] = userID
		}
	}
	if r.logger != nil {
		r.logger.Printf("ERROR %v %v", extras, err)
	}
	if r.enabled {
		rollbar.Error(err, extras)
	}
}

func (r *Reporter) Warn(msg string, args ...interface{}) {
	if r == nil {
		return
	}
	if r.logger != nil {
		r.logger.Printf("WARN "+msg, args...)
	}
	if r.enabled {
		rollbar.Warning(msg)
	}
}

// Flush blocks until queued reports are sent.
func (r *Reporter) Flush() {
	if r != nil && r.enabled {
		rollbar.Wait()
	}
}
