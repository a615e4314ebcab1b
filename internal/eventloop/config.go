package eventloop

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config groups the loop tunables. Values are read from environment variables
// with the prefix "KNOWHUB_LOOP_". Example: KNOWHUB_LOOP_QUEUE_SIZE=512 .
type Config struct {
	QueueSize      int           `envconfig:"QUEUE_SIZE"      default:"256"`
	EnqueueTimeout time.Duration `envconfig:"ENQUEUE_TIMEOUT" default:"100ms"`

	// Name labels the loop's metrics.
	Name string `envconfig:"-"`
}

// LoadConfig populates Config from environment variables (prefix KNOWHUB_LOOP_).
func LoadConfig() (Config, error) {
	var c Config
	return c, envconfig.Process("KNOWHUB_LOOP", &c)
}
