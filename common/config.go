package common

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kataras/golog"
	"github.com/mitchellh/mapstructure"
	"github.com/xor-shift/simdpcg/util/rng"
)

// Config is shared by every executable. Values come from .env files and the
// process environment, the latter taking precedence.
type Config struct {
	AMQPURL      string `mapstructure:"AMQP_URL"`
	AMQPExchange string `mapstructure:"AMQP_EXCHANGE"`

	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBAddress  string `mapstructure:"DB_ADDRESS"`
	DBName     string `mapstructure:"DB_NAME"`

	ListenAddr string `mapstructure:"LISTEN_ADDR"`

	RNGBackend string `mapstructure:"RNG_BACKEND"`
	BatchSteps uint   `mapstructure:"BATCH_STEPS"`
	Workers    uint   `mapstructure:"WORKERS"`

	LogLevel string `mapstructure:"LOG_LEVEL"`
}

func DefaultConfig() Config {
	return Config{
		AMQPExchange: "pcg_batches",
		ListenAddr:   ":8080",
		RNGBackend:   "emulated",
		BatchSteps:   256,
		Workers:      1,
		LogLevel:     "info",
	}
}

// LoadConfig reads the given dotenv files (".env" if none), overlays the
// process environment and decodes the result over DefaultConfig. Missing
// dotenv files are not an error.
func LoadConfig(files ...string) (Config, error) {
	values := map[string]interface{}{}

	fileValues, err := godotenv.Read(files...)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}

	for k, v := range fileValues {
		values[k] = v
	}

	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			values[k] = v
		}
	}

	return DecodeConfig(values)
}

// DecodeConfig decodes loosely typed key/value pairs over DefaultConfig.
func DecodeConfig(values map[string]interface{}) (Config, error) {
	cfg := DefaultConfig()

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return Config{}, err
	}

	if err = decoder.Decode(values); err != nil {
		return Config{}, err
	}

	if cfg.Workers == 0 {
		cfg.Workers = 1
	}

	return cfg, nil
}

func (cfg Config) Backend() (rng.Backend, error) {
	return rng.BackendByName(cfg.RNGBackend)
}

// SetupLogging applies the configured level to the package-level golog logger.
func (cfg Config) SetupLogging() {
	golog.SetLevel(cfg.LogLevel)
}
