package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/catalog-backend/pkg/e"
	"github.com/DRSN-tech/catalog-backend/pkg/logger"
	"github.com/jimlawless/whereami"
)

type Config struct {
	Minio  *MinIOCfg
	Http   *HTTPConfig
	Grpc   *GRPCConfig
	Db     *PGDBCfg
	Redis  *RedisCfg
	Kafka  *KafkaCfg
	Outbox *OutboxCfg
	Log    *LogCfg
}

type KafkaCfg struct {
	Topic             string
	Brokers           []string
	NetworkMode       string
	Partitions        int
	ReplicationFactor int
}

type MinIOCfg struct {
	MinioEndpoint     string
	BucketName        string // Бакет для выгрузок каталога
	MinioRootUser     string
	MinioRootPassword string
	MinioUseSSL       bool
	ExportPrefix      string // Префикс ключей выгрузок категорий
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type GRPCConfig struct {
	Port        string
	NetworkMode string
}

type PGDBCfg struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisCfg struct {
	Addr        string
	Password    string
	User        string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration // Общий таймаут чтения и записи
	CategoryTTL time.Duration
}

// OutboxCfg управляет разбором очереди outbox.
type OutboxCfg struct {
	BatchSize    int
	PollInterval time.Duration
	MaxBackoff   time.Duration
	// MaxAttempts — после стольких неудачных публикаций событие получает статус failed.
	MaxAttempts  int
}

type LogCfg struct {
	Mode string // dev | prod
}

// Load читает конфигурацию из переменных окружения.
// Возвращает ошибку по первой отсутствующей или некорректной переменной.
func Load(log logger.Logger) (*Config, error) {
	r := &envReader{log: log}

	c := &Config{
		Db:     loadPGDBCfg(r),
		Http:   loadHTTPConfig(r),
		Grpc:   loadGRPCConfig(),
		Redis:  loadRedisCfg(r),
		Minio:  loadMinIOCfg(r),
		Kafka:  loadKafkaCfg(r),
		Outbox: loadOutboxCfg(r),
		Log:    LoadLogCfg(),
	}
	if r.err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), r.err)
	}

	return c, nil
}

// LoadLogCfg читается отдельно: логгер нужен до загрузки остальной конфигурации.
func LoadLogCfg() *LogCfg {
	return &LogCfg{
		Mode: getEnvOrDefault("LOG_MODE", "dev"),
	}
}

func loadPGDBCfg(r *envReader) *PGDBCfg {
	return &PGDBCfg{
		Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
		Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
		User:     r.required("POSTGRES_USER"),
		Password: r.required("POSTGRES_PASSWORD"),
		DBName:   r.required("POSTGRES_DB"),
		SSLMode:  getEnvOrDefault("SSL_MODE", "disable"),
	}
}

func loadHTTPConfig(r *envReader) *HTTPConfig {
	return &HTTPConfig{
		Port:         getEnvOrDefault("HTTP_PORT", "8080"),
		ReadTimeout:  r.duration("HTTP_READ_TIMEOUT", 5*time.Second),
		WriteTimeout: r.duration("HTTP_WRITE_TIMEOUT", 10*time.Second),
		IdleTimeout:  r.duration("KEEP_ALIVE", time.Minute),
	}
}

func loadGRPCConfig() *GRPCConfig {
	return &GRPCConfig{
		Port:        getEnvOrDefault("GRPC_PORT", "8091"),
		NetworkMode: getEnvOrDefault("GRPC_NETWORK_MODE", "tcp"),
	}
}

func loadRedisCfg(r *envReader) *RedisCfg {
	const defaultTimeout = 3 * time.Second

	readTimeout := r.duration("READ_TIMEOUT", defaultTimeout)
	writeTimeout := r.duration("WRITE_TIMEOUT", defaultTimeout)

	return &RedisCfg{
		Addr:        getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		Password:    os.Getenv("REDIS_PASSWORD"),
		User:        os.Getenv("REDIS_USER"),
		DB:          r.number("REDIS_DB_ID", 0),
		MaxRetries:  r.number("MAX_RETRIES", 3),
		DialTimeout: r.duration("DIAL_TIMEOUT", 5*time.Second),
		Timeout:     max(readTimeout, writeTimeout),
		CategoryTTL: r.duration("CATEGORY_TTL", 5*time.Minute),
	}
}

func loadMinIOCfg(r *envReader) *MinIOCfg {
	return &MinIOCfg{
		MinioEndpoint:     getEnvOrDefault("MINIO_ENDPOINT", "minio:9000"),
		BucketName:        getEnvOrDefault("BUCKET_NAME", "catalog-exports"),
		MinioRootUser:     os.Getenv("MINIO_ROOT_USER"),
		MinioRootPassword: os.Getenv("MINIO_ROOT_PASSWORD"),
		MinioUseSSL:       r.flag("MINIO_USE_SSL", false),
		ExportPrefix:      getEnvOrDefault("EXPORT_PREFIX", "categories"),
	}
}

func loadKafkaCfg(r *envReader) *KafkaCfg {
	return &KafkaCfg{
		Brokers:           r.list("KAFKA_BROKERS"),
		Topic:             r.required("KAFKA_TOPIC"),
		Partitions:        r.positiveInt("KAFKA_PARTITIONS", 3),
		ReplicationFactor: r.positiveInt("REPLICATION_FACTOR", 1),
		NetworkMode:       getEnvOrDefault("KAFKA_NETWORK_MODE", "tcp"),
	}
}

func loadOutboxCfg(r *envReader) *OutboxCfg {
	return &OutboxCfg{
		BatchSize:    r.positiveInt("OUTBOX_BATCH_SIZE", 10),
		PollInterval: r.duration("OUTBOX_POLL_INTERVAL", 5*time.Second),
		MaxBackoff:   r.duration("OUTBOX_MAX_BACKOFF", 30*time.Second),
		MaxAttempts:  r.positiveInt("OUTBOX_MAX_ATTEMPTS", 10),
	}
}

// DSN собирает строку подключения к PostgreSQL.
func (c *PGDBCfg) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.DBName,
		c.SSLMode,
	)
}

// envReader запоминает и логирует первую ошибку чтения.
// После ошибки методы продолжают возвращать значения по умолчанию, а Load проверяет err один раз.
type envReader struct {
	log logger.Logger
	err error
}

func (r *envReader) fail(key string, err error) {
	if r.err != nil {
		return
	}

	r.err = e.Wrap(key, err)
	r.log.Errorf(err, "invalid %s", key)
}

func (r *envReader) required(key string) string {
	v := os.Getenv(key)
	if v == "" {
		r.fail(key, e.Wrap("is required", e.ErrIncorrectEnvVariable))
	}

	return v
}

// list читает обязательный список через запятую. Пустые элементы отбрасываются.
func (r *envReader) list(key string) []string {
	var items []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	if len(items) == 0 {
		r.fail(key, e.Wrap("is required", e.ErrIncorrectEnvVariable))
	}

	return items
}

func (r *envReader) number(key string, def int) int {
	v, err := parseIntEnv(key, def)
	if err != nil {
		r.fail(key, err)
	}

	return v
}

func (r *envReader) positiveInt(key string, def int) int {
	v := r.number(key, def)
	if v <= 0 {
		r.fail(key, e.Wrap("must be positive", e.ErrIncorrectEnvVariable))
		return def
	}

	return v
}

func (r *envReader) duration(key string, def time.Duration) time.Duration {
	v, err := parseDurationEnv(key, def)
	if err != nil {
		r.fail(key, err)
		return def
	}

	return v
}

func (r *envReader) flag(key string, def bool) bool {
	v, err := strconv.ParseBool(getEnvOrDefault(key, strconv.FormatBool(def)))
	if err != nil {
		r.fail(key, e.ErrIncorrectEnvVariable)
		return def
	}

	return v
}

// getEnvOrDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// parseDurationEnv считывает длительность или возвращает значение по умолчанию.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if v := os.Getenv(key); v != "" {
		return time.ParseDuration(v)
	}

	return defaultValue, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return intValue, nil
}
