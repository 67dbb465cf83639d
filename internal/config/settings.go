package config

import (
	"time"
)

// Compile time variables are set by -ldflags.
var (
	ServiceVersion string
	CommitSHA      string
	APIVersion     string
)

const (
	Development = 1 << iota
	Sandbox
	Staging
	Production
)

type (
	ServiceConfig struct {
		AppConfig             AppConfig                   `json:"app_config"`
		Logging               LoggingConfig               `json:"logging"`
		Telemetry             Telemetry                   `json:"telemetry"`
		SecretStorage         SecretStorageConfig         `json:"secret_storage"`
		HTTPServer            HTTPServerConfig            `json:"http_server"`
		SSE                   SSEConfig                   `json:"sse"`
		Cache                 CacheConfig                 `json:"cache"`
		Storage               StorageConfig               `json:"storage"`
		Queue                 QueueConfig                 `json:"queue"`
		Outbox                OutboxConfig                `json:"outbox"`
		Consumer              ConsumerConfig              `json:"consumer"`
		UserService           UserServiceConfig           `json:"user_service"`
		Expiry                ExpiryConfig                `json:"expiry"`
		ThrottledRateLimiting ThrottledRateLimitingConfig `json:"throttled_rate_limiting"`
		Backoff               BackoffConfig               `json:"backoff"`
	}

	AppConfig struct {
		ServiceName    string `envconfig:"APP_SERVICE_NAME" default:"svc-commerce-events" json:"service_name"`
		ServiceVersion string `envconfig:"APP_SERVICE_VERSION" default:"0.0.0" json:"service_version"`
		CommitSHA      string `envconfig:"APP_COMMIT_SHA" default:"unknown" json:"commit_sha"`
		APIVersion     string `envconfig:"APP_API_VERSION" default:"v1" json:"api_version"`
		Env            string `envconfig:"APP_ENVIRONMENT" default:"unknown" json:"env"`
	}

	LoggingConfig struct {
		Level     string          `envconfig:"LOGGING_LEVEL" default:"info" json:"level"`
		Format    string          `envconfig:"LOGGING_FORMAT" default:"json" json:"format"`
		AccessLog AccessLogConfig `json:"access_log"`
	}

	AccessLogConfig struct {
		Enabled            bool `envconfig:"ACCESS_LOG_ENABLED" default:"true" json:"enabled"`
		LogHealthChecks    bool `envconfig:"ACCESS_LOG_HEALTH_CHECKS" default:"false" json:"log_health_checks"`
		IncludeQueryParams bool `envconfig:"ACCESS_LOG_INCLUDE_QUERY_PARAMS" default:"true" json:"include_query_params"`
	}

	Telemetry struct {
		ExporterType string `envconfig:"OTEL_EXPORTER" default:"grpc" json:"exporter_type"`

		OtelGRPCHost       string `envconfig:"OTEL_HOST" json:"otel_grpc_host"`
		OtelGRPCPort       string `envconfig:"OTEL_PORT" default:"4317" json:"otel_grpc_port"`
		OtelProductCluster string `envconfig:"OTEL_PRODUCT_CLUSTER" json:"otel_product_cluster"`

		Metrics Metrics `json:"metrics"`
		Traces  Traces  `json:"traces"`
	}

	Metrics struct {
		Enabled bool `envconfig:"METRICS_ENABLED" default:"false" json:"enabled"`
	}

	Traces struct {
		Enabled      bool    `envconfig:"TRACES_ENABLED" default:"false" json:"enabled"`
		SamplerRatio float64 `envconfig:"TRACES_SAMPLER_RATIO" default:"1" json:"sampler_ratio"`
	}

	SecretStorageConfig struct {
		Enabled       bool          `envconfig:"VAULT_ENABLED" default:"false" json:"enabled"`
		Address       string        `envconfig:"VAULT_ADDRESS" default:"http://vault:8200" json:"address"`
		Token         string        `envconfig:"VAULT_TOKEN" default:"" json:"token,omitempty"`
		RoleID        string        `envconfig:"VAULT_ROLE_ID" default:"" json:"role_id,omitempty"`
		SecretID      string        `envconfig:"VAULT_SECRET_ID" default:"" json:"secret_id,omitempty"`
		AuthMethod    string        `envconfig:"VAULT_AUTH_METHOD" default:"token" json:"auth_method"`
		MountPath     string        `envconfig:"VAULT_MOUNT_PATH" default:"svc-commerce-events" json:"mount_path"`
		Namespace     string        `envconfig:"VAULT_NAMESPACE" default:"" json:"namespace,omitempty"`
		Timeout       time.Duration `envconfig:"VAULT_TIMEOUT" default:"30s" json:"timeout"`
		MaxRetries    int           `envconfig:"VAULT_MAX_RETRIES" default:"3" json:"max_retries"`
		TLSSkipVerify bool          `envconfig:"VAULT_TLS_SKIP_VERIFY" default:"false" json:"tls_skip_verify"`
		PollInterval  time.Duration `envconfig:"VAULT_POLL_INTERVAL" default:"24h" json:"poll_interval"`
	}

	HTTPServerConfig struct {
		Port            int           `envconfig:"HTTP_SERVER_PORT" default:"8088" json:"port"`
		Host            string        `envconfig:"HTTP_SERVER_HOST" default:"0.0.0.0" json:"host"`
		ReadTimeout     time.Duration `envconfig:"HTTP_SERVER_READ_TIMEOUT" default:"30s" json:"read_timeout"`
		WriteTimeout    time.Duration `envconfig:"HTTP_SERVER_WRITE_TIMEOUT" default:"30s" json:"write_timeout"`
		IdleTimeout     time.Duration `envconfig:"HTTP_SERVER_IDLE_TIMEOUT" default:"120s" json:"idle_timeout"`
		ShutdownTimeout time.Duration `envconfig:"HTTP_SERVER_SHUTDOWN_TIMEOUT" default:"30s" json:"shutdown_timeout"`
	}

	SSEConfig struct {
		HeartbeatInterval time.Duration `envconfig:"SSE_HEARTBEAT_INTERVAL" default:"5s" json:"heartbeat_interval"`
		ClientBufferSize  int           `envconfig:"SSE_CLIENT_BUFFER_SIZE" default:"64" json:"client_buffer_size"`
	}

	StorageConfig struct {
		Host            string        `envconfig:"POSTGRES_HOST" default:"postgres" json:"host"`
		Port            int           `envconfig:"POSTGRES_PORT" default:"5432" json:"port"`
		Database        string        `envconfig:"POSTGRES_DATABASE" default:"commerce" json:"database"`
		Username        string        `envconfig:"POSTGRES_USERNAME" default:"postgres" json:"username"`
		Password        string        `envconfig:"POSTGRES_PASSWORD" default:"" json:"password,omitempty"`
		SSLMode         string        `envconfig:"POSTGRES_SSL_MODE" default:"disable" json:"ssl_mode"`
		MaxOpenConns    int           `envconfig:"POSTGRES_MAX_OPEN_CONNS" default:"25" json:"max_open_conns"`
		MaxIdleConns    int           `envconfig:"POSTGRES_MAX_IDLE_CONNS" default:"5" json:"max_idle_conns"`
		ConnMaxLifetime time.Duration `envconfig:"POSTGRES_CONN_MAX_LIFETIME" default:"5m" json:"conn_max_lifetime"`
		ConnMaxIdleTime time.Duration `envconfig:"POSTGRES_CONN_MAX_IDLE_TIME" default:"5m" json:"conn_max_idle_time"`
		ConnectTimeout  time.Duration `envconfig:"POSTGRES_CONNECT_TIMEOUT" default:"10s" json:"connect_timeout"`
		QueryTimeout    time.Duration `envconfig:"POSTGRES_QUERY_TIMEOUT" default:"30s" json:"query_timeout"`
	}

	QueueConfig struct {
		Host            string        `envconfig:"BUS_HOST" default:"rabbitmq" json:"host"`
		Port            int           `envconfig:"BUS_PORT" default:"5672" json:"port"`
		Username        string        `envconfig:"BUS_USERNAME" default:"admin" json:"username"`
		Password        string        `envconfig:"BUS_PASSWORD" default:"" json:"password,omitempty"`
		VirtualHost     string        `envconfig:"BUS_VIRTUAL_HOST" default:"/" json:"virtual_host"`
		ExchangeName    string        `envconfig:"BUS_EXCHANGE_NAME" default:"commerce-events" json:"exchange_name"`
		ConnectTimeout  time.Duration `envconfig:"BUS_CONNECT_TIMEOUT" default:"10s" json:"connect_timeout"`
		ConnectAttempts int           `envconfig:"BUS_CONNECT_ATTEMPTS" default:"10" json:"connect_attempts"`
		Heartbeat       time.Duration `envconfig:"BUS_HEARTBEAT" default:"10s" json:"heartbeat"`
	}

	// OutboxConfig drives the drainer loop and the publisher retry policy.
	// Table only matters for the standalone drainer role; the users and
	// orders services always drain their own table.
	OutboxConfig struct {
		Table           string        `envconfig:"OUTBOX_TABLE" default:"users_outbox" json:"table"`
		PollInterval    time.Duration `envconfig:"OUTBOX_POLL_INTERVAL" default:"1s" json:"poll_interval"`
		BatchSize       int           `envconfig:"OUTBOX_BATCH_SIZE" default:"20" json:"batch_size"`
		LockDuration    time.Duration `envconfig:"OUTBOX_LOCK_DURATION" default:"30s" json:"lock_duration"`
		MaxRetries      int           `envconfig:"OUTBOX_MAX_RETRIES" default:"5" json:"max_retries"`
		DeadLetterTopic string        `envconfig:"OUTBOX_DEAD_LETTER_TOPIC" default:"commerce.dead-letter" json:"dead_letter_topic"`
		FlushGrace      time.Duration `envconfig:"OUTBOX_FLUSH_GRACE" default:"5s" json:"flush_grace"`
	}

	ConsumerConfig struct {
		GroupName        string   `envconfig:"CONSUMER_GROUP" default:"" json:"group_name"`
		SubscribedTopics []string `envconfig:"CONSUMER_SUBSCRIBED_TOPICS" default:"" json:"subscribed_topics"`
		PrefetchCount    int      `envconfig:"CONSUMER_PREFETCH_COUNT" default:"1" json:"prefetch_count"`
	}

	// UserServiceConfig configures the synchronous read-only probe the orders
	// service runs against the users service before accepting an order.
	UserServiceConfig struct {
		BaseURL          string               `envconfig:"USER_SERVICE_BASE_URL" default:"http://users:8088" json:"base_url"`
		Timeout          time.Duration        `envconfig:"USER_SERVICE_TIMEOUT" default:"5s" json:"timeout"`
		MaxRetries       int                  `envconfig:"USER_SERVICE_MAX_RETRIES" default:"2" json:"max_retries"`
		RetryWaitTime    time.Duration        `envconfig:"USER_SERVICE_RETRY_WAIT_TIME" default:"250ms" json:"retry_wait_time"`
		MaxRetryWaitTime time.Duration        `envconfig:"USER_SERVICE_MAX_RETRY_WAIT_TIME" default:"1s" json:"max_retry_wait_time"`
		CircuitBreaker   CircuitBreakerConfig `envconfig:"USER_SERVICE_CIRCUIT_BREAKER" json:"circuit_breaker"`
	}

	ExpiryConfig struct {
		PollInterval        time.Duration `envconfig:"EXPIRY_POLL_INTERVAL" default:"5s" json:"poll_interval"`
		BatchSize           int           `envconfig:"EXPIRY_BATCH_SIZE" default:"50" json:"batch_size"`
		OrderExpiryDefault  time.Duration `envconfig:"ORDER_EXPIRY_DEFAULT_MINUTES" default:"15m" json:"order_expiry_default"`
		InactivityThreshold time.Duration `envconfig:"INACTIVITY_THRESHOLD_MINUTES" default:"30m" json:"inactivity_threshold"`
	}

	CacheConfig struct {
		Addr          string        `envconfig:"KEYDB_ADDR" default:"keydb:6379" json:"addr"`
		Password      string        `envconfig:"KEYDB_PASSWORD" default:"" json:"password,omitempty"`
		DB            int           `envconfig:"KEYDB_DB" default:"0" json:"db"`
		PoolSize      int           `envconfig:"KEYDB_POOL_SIZE" default:"10" json:"pool_size"`
		MinIdleConns  int           `envconfig:"KEYDB_MIN_IDLE_CONNS" default:"3" json:"min_idle_conns"`
		DialTimeout   time.Duration `envconfig:"KEYDB_DIAL_TIMEOUT" default:"5s" json:"dial_timeout"`
		ReadTimeout   time.Duration `envconfig:"KEYDB_READ_TIMEOUT" default:"3s" json:"read_timeout"`
		WriteTimeout  time.Duration `envconfig:"KEYDB_WRITE_TIMEOUT" default:"3s" json:"write_timeout"`
		PoolTimeout   time.Duration `envconfig:"KEYDB_POOL_TIMEOUT" default:"5s" json:"pool_timeout"`
		MaxRetries    int           `envconfig:"KEYDB_MAX_RETRIES" default:"3" json:"max_retries"`
		DefaultExpiry time.Duration `envconfig:"KEYDB_DEFAULT_EXPIRY" default:"10m" json:"default_expiry"`
	}

	ThrottledRateLimitingConfig struct {
		Enabled           bool     `envconfig:"RATE_LIMITING_ENABLED" default:"true" json:"enabled"`
		RequestsPerSecond int      `envconfig:"RATE_LIMITING_REQUESTS_PER_SECOND" default:"10" json:"requests_per_second"`
		BurstSize         int      `envconfig:"RATE_LIMITING_BURST_SIZE" default:"20" json:"burst_size"`
		MaxKeys           int      `envconfig:"RATE_LIMITING_MAX_KEYS" default:"1000" json:"max_keys"`
		SkipPaths         []string `envconfig:"RATE_LIMITING_SKIP_PATHS" default:"/health" json:"skip_paths"`
	}

	BackoffConfig struct {
		// BaseDelay is the amount of time to backoff after the first failure.
		BaseDelay time.Duration `environment:"BASE_DELAY" default:"1s" json:"base_delay"`
		// Multiplier is the factor with which to multiply backoffs after a
		// failed retry. Should ideally be greater than 1.
		Multiplier float64 `environment:"MULTIPLIER" default:"1.6" json:"multiplier"`
		// Jitter is the factor with which backoffs are randomized.
		Jitter float64 `environment:"JITTER" default:"0.2" json:"jitter"`
		// MaxDelay is the upper bound of backoff delay.
		MaxDelay time.Duration `environment:"MAX_DELAY" default:"10s" json:"max_delay"`
	}

	CircuitBreakerConfig struct {
		MaxRequests uint32        `envconfig:"MAX_REQUESTS" default:"3" json:"max_requests"`
		Interval    time.Duration `envconfig:"INTERVAL" default:"10s" json:"interval"`
		Timeout     time.Duration `envconfig:"TIMEOUT" default:"60s" json:"timeout"`
	}
)
