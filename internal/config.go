package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Host     string `env:"HOST,default=0.0.0.0"`
	HTTPPort int    `env:"HTTP_PORT,default=8080" validate:"gt=0,lt=65536"`
	GrpcPort int    `env:"GRPC_PORT,default=9090" validate:"gt=0,lt=65536"`
	LogLevel string `env:"LOG_LEVEL,default=INFO" validate:"oneof=DEBUG INFO WARN ERROR"`

	BadgerFilepath string `env:"BADGER_FILEPATH,required=true" validate:"required"`
	// DebugInspectorPort serves the Badger inspector when LOG_LEVEL is DEBUG; 0 disables it.
	DebugInspectorPort int `env:"DEBUG_INSPECTOR_PORT,default=8081" validate:"gte=0,lt=65536"`

	NumberOfShards        int           `env:"NUMBER_OF_SHARDS,default=8" validate:"gt=0"`
	ShardBufferSize       int           `env:"SHARD_BUFFER_SIZE,default=256" validate:"gte=0"`
	PersistenceBufferSize int           `env:"PERSISTENCE_BUFFER_SIZE,default=1024" validate:"gt=0"`
	PersistenceTimeout    time.Duration `env:"PERSISTENCE_TIMEOUT,default=2s" validate:"gt=0"`
	RestartInterval       time.Duration `env:"RESTART_INTERVAL,default=1s" validate:"gt=0"`
	MetricInterval        time.Duration `env:"METRIC_INTERVAL,default=30s" validate:"gt=0"`
	LowCapacityThreshold  int           `env:"LOW_CAPACITY_THRESHOLD,default=10" validate:"gte=0"`
	ShutdownTimeout       time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s" validate:"gt=0"`

	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=256" validate:"gt=0"`
	PingPeriod           time.Duration `env:"PING_PERIOD,default=54s" validate:"gt=0,ltfield=PongWait"`
	PongWait             time.Duration `env:"PONG_WAIT,default=60s" validate:"gt=0"`
	WriteWait            time.Duration `env:"WRITE_WAIT,default=10s" validate:"gt=0"`
	MaxMessageSize       int64         `env:"MAX_MESSAGE_SIZE,default=65536" validate:"gt=0"`

	PresenceBroadcast   bool          `env:"PRESENCE_BROADCAST,default=true"`
	EngagementWindow    time.Duration `env:"ENGAGEMENT_WINDOW,default=5m" validate:"gt=0"`
	RecentActivityLimit int           `env:"RECENT_ACTIVITY_LIMIT,default=10" validate:"gte=0"`
}

// LoadConfig reads an optional .env file, then the environment, then validates the result.
// Variables already set in the environment win over the .env file.
func LoadConfig(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("dotenv: %w", err)
	}
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, err
	}
	if err := validator.New().Struct(config); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}
