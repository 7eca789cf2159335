package kiro

import (
	"time"

	"github.com/krisalay/kiro/logger"
)

// Config holds the pipeline settings. Build it with NewConfig and override fields.
type Config struct {
	// GeneralLifetime bounds how long the image list and the layout library stay cached.
	GeneralLifetime time.Duration

	// DataLifetime bounds how long a loaded kiro file stays cached.
	DataLifetime time.Duration

	// LayoutsPath points at a layouts.json. Empty uses the built-in layouts.
	LayoutsPath string

	// SchemaValidation turns JSON schema checks of kiro files on.
	SchemaValidation bool

	LogLevel logger.Level

	// Clock replaces time.Now for both caches.
	Clock func() time.Time
}

// DefaultLifetime is the lifetime of both caches unless configured otherwise.
const DefaultLifetime = 5 * time.Second

// NewConfig returns the defaults: 5s caches, built-in layouts, validation on.
func NewConfig() Config {
	return Config{
		GeneralLifetime:  DefaultLifetime,
		DataLifetime:     DefaultLifetime,
		SchemaValidation: true,
		LogLevel:         logger.LevelInfo,
	}
}
