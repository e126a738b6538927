// Application configuration: config.yaml, .env, TICKETING_* environment
// variables and command-line flags, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "TICKETING"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Platform PlatformConfig `mapstructure:"platform"`
	Payment  PaymentConfig  `mapstructure:"payment"`
	Chain    ChainConfig    `mapstructure:"chain"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Journal  JournalConfig  `mapstructure:"journal"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
}

type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           string        `mapstructure:"port"`
	Timeout        time.Duration `mapstructure:"timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout int           `mapstructure:"request_timeout"` // seconds
	Mode           string        `mapstructure:"mode"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver"` // memory | postgres
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	MaxRetries   int           `mapstructure:"max_retries"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PoolTimeout  time.Duration `mapstructure:"pool_timeout"`
}

// PlatformConfig seeds the platform singleton on first start. Later starts
// keep whatever is already stored.
type PlatformConfig struct {
	Owner              string `mapstructure:"owner"`
	FeePercent         uint64 `mapstructure:"fee_percent"`
	MinTicketPrice     uint64 `mapstructure:"min_ticket_price"`
	MaxRefundWindow    uint64 `mapstructure:"max_refund_window"`
	PurchaseAfterEvent bool   `mapstructure:"purchase_after_event"`
}

type PaymentConfig struct {
	Rail      string `mapstructure:"rail"`    // memory | redis
	Custody   string `mapstructure:"custody"` // organizer | platform
	KeyPrefix string `mapstructure:"key_prefix"`
	// Genesis balances credited to the memory rail at start. Viper lowercases
	// map keys, so identities here must be lowercase.
	Genesis map[string]uint64 `mapstructure:"genesis"`
}

type ChainConfig struct {
	HeightSource  string        `mapstructure:"height_source"` // local | redis
	HeightKey     string        `mapstructure:"height_key"`
	StartHeight   uint64        `mapstructure:"start_height"`
	ProduceBlocks bool          `mapstructure:"produce_blocks"`
	BlockInterval time.Duration `mapstructure:"block_interval"`
}

type JWTConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Secret     string        `mapstructure:"secret"`
	Issuer     string        `mapstructure:"issuer"`
	Expiration time.Duration `mapstructure:"expiration"`
}

type NotifyConfig struct {
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	RabbitMQ   RabbitMQConfig   `mapstructure:"rabbitmq"`
	Redis      RedisQueueConfig `mapstructure:"redis"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	BufferSize int              `mapstructure:"buffer_size"`
	MaxRetries int              `mapstructure:"max_retries"`
	BaseDelay  time.Duration    `mapstructure:"base_delay"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type RabbitMQConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

// RedisQueueConfig pushes events to a Redis list. DeadLetter collects
// events no publisher accepted and works even when Enabled is false.
type RedisQueueConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Queue      string `mapstructure:"queue"`
	DeadLetter string `mapstructure:"dead_letter"`
}

type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

type JournalConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type SnapshotConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Path     string        `mapstructure:"path"`
	Interval time.Duration `mapstructure:"interval"`
}

// LoadConfig builds a viper instance from defaults, the optional .env file,
// the config file, the environment and args.
func LoadConfig(args []string) (*viper.Viper, error) {
	_ = godotenv.Load()

	viperInstance := viper.New()
	setDefaults(viperInstance)

	flags := pflag.NewFlagSet("ticketing", pflag.ContinueOnError)
	flags.String("config", "./config/config.yaml", "path to the config file")
	flags.String("port", viperInstance.GetString("server.port"), "HTTP listen port")
	flags.String("storage", viperInstance.GetString("storage.driver"), "storage driver: memory or postgres")
	flags.String("log-level", viperInstance.GetString("log.level"), "log level")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	bindings := map[string]string{
		"server.port":    "port",
		"storage.driver": "storage",
		"log.level":      "log-level",
	}
	for key, flag := range bindings {
		if err := viperInstance.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return nil, err
		}
	}

	viperInstance.SetEnvPrefix(envPrefix)
	viperInstance.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperInstance.AutomaticEnv()

	path, _ := flags.GetString("config")
	viperInstance.SetConfigFile(path)
	if err := viperInstance.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return viperInstance, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {
	var c Config

	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "memory", "postgres":
	default:
		return fmt.Errorf("storage.driver: unknown driver %q", c.Storage.Driver)
	}
	switch c.Payment.Rail {
	case "memory", "redis":
	default:
		return fmt.Errorf("payment.rail: unknown rail %q", c.Payment.Rail)
	}
	if c.Storage.Driver == "postgres" && c.Payment.Rail == "memory" {
		return errors.New("payment.rail: memory balances do not survive restarts of postgres storage, use redis")
	}
	switch c.Payment.Custody {
	case "organizer", "platform":
	default:
		return fmt.Errorf("payment.custody: unknown mode %q", c.Payment.Custody)
	}
	switch c.Chain.HeightSource {
	case "local", "redis":
	default:
		return fmt.Errorf("chain.height_source: unknown source %q", c.Chain.HeightSource)
	}
	if c.Platform.Owner == "" {
		return errors.New("platform.owner is required")
	}
	if c.Platform.FeePercent > 100 {
		return fmt.Errorf("platform.fee_percent: %d exceeds 100", c.Platform.FeePercent)
	}
	if c.JWT.Enabled && c.JWT.Secret == "" {
		return errors.New("jwt.secret is required when jwt is enabled")
	}
	if c.Chain.ProduceBlocks && c.Chain.BlockInterval <= 0 {
		return errors.New("chain.block_interval must be positive")
	}
	if c.Notify.Telegram.Enabled && (c.Notify.Telegram.BotToken == "" || c.Notify.Telegram.ChatID == "") {
		return errors.New("notify.telegram needs bot_token and chat_id")
	}
	if c.Snapshot.Enabled && c.Snapshot.Interval <= 0 {
		return errors.New("snapshot.interval must be positive")
	}
	return nil
}

func (c *Config) ServerAddress() string {
	return c.Server.Host + ":" + c.Server.Port
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.request_timeout", 30)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.allowed_origins", []string{})

	v.SetDefault("log.level", "info")

	v.SetDefault("storage.driver", "memory")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "ticketing")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.dbname", "ticketing")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)
	v.SetDefault("redis.pool_timeout", 4*time.Second)

	v.SetDefault("platform.owner", "platform")
	v.SetDefault("platform.fee_percent", 5)
	v.SetDefault("platform.min_ticket_price", 1_000_000)
	v.SetDefault("platform.max_refund_window", 1008)
	v.SetDefault("platform.purchase_after_event", true)

	v.SetDefault("payment.rail", "memory")
	v.SetDefault("payment.custody", "organizer")
	v.SetDefault("payment.key_prefix", "ticketing:balance:")

	v.SetDefault("chain.height_source", "local")
	v.SetDefault("chain.height_key", "ticketing:height")
	v.SetDefault("chain.start_height", 1)
	v.SetDefault("chain.produce_blocks", true)
	v.SetDefault("chain.block_interval", 10*time.Second)

	v.SetDefault("jwt.enabled", true)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "ticketing")
	v.SetDefault("jwt.expiration", 24*time.Hour)

	v.SetDefault("notify.buffer_size", 256)
	v.SetDefault("notify.max_retries", 3)
	v.SetDefault("notify.base_delay", 500*time.Millisecond)
	v.SetDefault("notify.kafka.topic", "ticketing.ledger")
	v.SetDefault("notify.rabbitmq.exchange", "ticketing.ledger")
	v.SetDefault("notify.redis.enabled", false)
	v.SetDefault("notify.redis.queue", "ticketing:ledger:events")
	v.SetDefault("notify.redis.dead_letter", "")
	v.SetDefault("notify.telegram.enabled", false)
	v.SetDefault("notify.telegram.bot_token", "")
	v.SetDefault("notify.telegram.chat_id", "")

	v.SetDefault("journal.enabled", true)
	v.SetDefault("journal.path", "./data/journal.db")

	v.SetDefault("snapshot.enabled", true)
	v.SetDefault("snapshot.path", "./data/ledger.cbor")
	v.SetDefault("snapshot.interval", time.Minute)
}
