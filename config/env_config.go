package config

import (
	"os"
	"strconv"
	"strings"
)

type EnvConfig struct {
	Postgres struct {
		HOST     string
		Database string
		Username string
		Password string
		Port     string
	}
	JWT struct {
		SecretKey string
		Algorithm string
		Expire    int
	}
	CORS struct {
		AllowDomains string
		GlobalDomain string
	}
	Redis struct {
		Password  string
		Database  int
		RedisHost string
		RedisPort string
	}
	RabbitMQ struct {
		Host     string
		Port     string
		Username string
		Password string
	}
	// B2 is the external bucket-API account used for all stored files.
	// Credentials are validated at first client use, not at startup.
	B2 struct {
		KeyID       string
		AppKey      string
		APIBase     string
		BucketID    string
		BucketName  string
		DownloadURL string
	}
	Upload struct {
		ImageMaxBytes     int64 // raw multipart cap for images
		DocumentMaxBytes  int64 // raw multipart cap for documents
		ImageMaxDimension int   // longest side after resize
		ImageJPEGQuality  int
	}
	// PlanLimitsMB maps a plan name to its storage ceiling in MB.
	PlanLimitsMB map[string]int64

	Grafana struct {
		OTLPEndpoint string
		ServiceName  string
	}
	PrivateKey string

	Environment struct {
		Mode  string
		Group string
	}
	DomainName string
}

func LoadEnvConfig() *EnvConfig {
	var config EnvConfig

	// Postgres
	config.Postgres.HOST = os.Getenv("PGPOOL_HOST")
	config.Postgres.Database = os.Getenv("PGPOOL_DB")
	config.Postgres.Username = os.Getenv("PGPOOL_USER")
	config.Postgres.Password = os.Getenv("PGPOOL_PASSWORD")
	config.Postgres.Port = os.Getenv("PGPOOL_PORT")

	// JWT
	config.JWT.SecretKey = os.Getenv("JWT_SECRET_KEY")
	config.JWT.Algorithm = os.Getenv("JWT_ALGORITHM")
	if val := os.Getenv("JWT_EXPIRE"); val != "" {
		config.JWT.Expire, _ = strconv.Atoi(val)
	} else {
		config.JWT.Expire = 3600 * 24 * 7
	}

	config.CORS.AllowDomains = os.Getenv("ALLOWED_DOMAINS")
	config.CORS.GlobalDomain = os.Getenv("GLOBAL_DOMAIN")

	config.Redis.Password = os.Getenv("REDIS_PASSWORD")
	config.Redis.Database, _ = strconv.Atoi(os.Getenv("REDIS_DB"))
	config.Redis.RedisHost = os.Getenv("REDIS_HOST")
	config.Redis.RedisPort = os.Getenv("REDIS_PORT")

	// RabbitMQ
	config.RabbitMQ.Host = os.Getenv("RABBITMQ_HOST")
	if config.RabbitMQ.Host == "" {
		config.RabbitMQ.Host = "localhost"
	}
	config.RabbitMQ.Port = os.Getenv("RABBITMQ_PORT")
	if config.RabbitMQ.Port == "" {
		config.RabbitMQ.Port = "5672"
	}
	config.RabbitMQ.Username = os.Getenv("RABBITMQ_USER")
	if config.RabbitMQ.Username == "" {
		config.RabbitMQ.Username = "guest"
	}
	config.RabbitMQ.Password = os.Getenv("RABBITMQ_PASSWORD")
	if config.RabbitMQ.Password == "" {
		config.RabbitMQ.Password = "guest"
	}

	// B2 (external bucket API). Intentionally no required-field checks
	// here: the store client reports missing credentials on first use.
	config.B2.KeyID = os.Getenv("B2_KEY_ID")
	config.B2.AppKey = os.Getenv("B2_APP_KEY")
	config.B2.APIBase = os.Getenv("B2_API_BASE")
	if config.B2.APIBase == "" {
		config.B2.APIBase = "https://api.backblazeb2.com"
	}
	config.B2.BucketID = os.Getenv("B2_BUCKET_ID")
	config.B2.BucketName = os.Getenv("B2_BUCKET_NAME")
	config.B2.DownloadURL = os.Getenv("B2_DOWNLOAD_URL")

	// Upload limits
	config.Upload.ImageMaxBytes = envInt64("UPLOAD_IMAGE_MAX_BYTES", 10*1024*1024)
	config.Upload.DocumentMaxBytes = envInt64("UPLOAD_DOCUMENT_MAX_BYTES", 25*1024*1024)
	config.Upload.ImageMaxDimension = int(envInt64("UPLOAD_IMAGE_MAX_DIMENSION", 1600))
	config.Upload.ImageJPEGQuality = int(envInt64("UPLOAD_IMAGE_JPEG_QUALITY", 80))

	// Plan storage ceilings, MB
	config.PlanLimitsMB = map[string]int64{
		"free": envInt64("PLAN_LIMIT_FREE_MB", 500),
		"plus": envInt64("PLAN_LIMIT_PLUS_MB", 2048),
		"pro":  envInt64("PLAN_LIMIT_PRO_MB", 10240),
	}

	config.PrivateKey = os.Getenv("PRIVATE_KEY")

	// Grafana/OpenTelemetry
	grafanaEndpoint := os.Getenv("GRAFANA_OTLP_ENDPOINT")
	// Remove protocol for OpenTelemetry client to avoid duplicate protocols
	if strings.HasPrefix(grafanaEndpoint, "https://") {
		config.Grafana.OTLPEndpoint = strings.TrimPrefix(grafanaEndpoint, "https://")
	} else if strings.HasPrefix(grafanaEndpoint, "http://") {
		config.Grafana.OTLPEndpoint = strings.TrimPrefix(grafanaEndpoint, "http://")
	} else {
		config.Grafana.OTLPEndpoint = grafanaEndpoint
	}
	config.Grafana.ServiceName = os.Getenv("SERVICE_NAME")
	if config.Grafana.ServiceName == "" {
		config.Grafana.ServiceName = "planhaus-asset-orchestrator"
	}

	config.Environment.Mode = os.Getenv("DEPLOY_ENV")
	if config.Environment.Mode == "" {
		config.Environment.Mode = "development"
	}
	config.Environment.Group = os.Getenv("GROUP_NAME")
	if config.Environment.Group == "" {
		config.Environment.Group = "local"
	}

	config.DomainName = os.Getenv("DOMAIN_NAME")
	if config.DomainName == "" {
		config.DomainName = "localhost:8080"
	}

	return &config
}

func envInt64(key string, fallback int64) int64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

// StorageLimitBytes resolves a plan name to its byte ceiling. Unknown plans
// fall back to the free tier.
func (c *EnvConfig) StorageLimitBytes(plan string) int64 {
	if mb, ok := c.PlanLimitsMB[plan]; ok {
		return mb * 1024 * 1024
	}
	return c.PlanLimitsMB["free"] * 1024 * 1024
}
