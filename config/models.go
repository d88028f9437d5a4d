package config

import "time"

// Config holds the configuration of the application
// Use config.LoadConfig to create a new instance. It is not modified after startup.
type Config struct {
	Server          ServerConfig          `mapstructure:"server"           yaml:"server"`
	Log             LogConfig             `mapstructure:"log"              yaml:"log"`
	Auth            AuthConfig            `mapstructure:"auth"             yaml:"auth"`
	HealthAnnotator HealthAnnotatorConfig `mapstructure:"health_annotator" yaml:"health_annotator"`
	Pipeline        PipelineConfig        `mapstructure:"pipeline"         yaml:"pipeline"`
	RedisCache      RedisCacheConfig      `mapstructure:"redis_cache"      yaml:"redis_cache"`
	Metrics         MetricsConfig         `mapstructure:"metrics"          yaml:"metrics"`
	Tracing         TracingConfig         `mapstructure:"tracing"          yaml:"tracing"`
}

type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port" validate:"gte=0,lte=65535"`
	// MaxRequestSize is the maximum accepted request body in bytes.
	MaxRequestSize int64 `mapstructure:"max_request_size" yaml:"max_request_size" validate:"gt=0"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	// Format is text or json.
	Format string `mapstructure:"format" yaml:"format" validate:"omitempty,oneof=text json"`
}

// AuthConfig configures access to the annotation endpoints. With an empty APIKey and
// Required unset, the API is open.
type AuthConfig struct {
	APIKey   string `mapstructure:"api_key"  yaml:"api_key"`
	Secret   string `mapstructure:"secret"   yaml:"secret"   validate:"required_if=Required true"`
	Required bool   `mapstructure:"required" yaml:"required"`
}

// HealthAnnotatorConfig configures the remote biomedical concept annotation API.
type HealthAnnotatorConfig struct {
	Enabled  bool   `mapstructure:"enabled"   yaml:"enabled"`
	APIURL   string `mapstructure:"api_url"   yaml:"api_url"   validate:"required_if=Enabled true,omitempty,url"`
	FlowName string `mapstructure:"flow_name" yaml:"flow_name" validate:"required_if=Enabled true"`
	// APIKey is loaded from ENV rather than the config file.
	APIKey         string          `mapstructure:"api_key"         yaml:"api_key"`
	TimeoutSeconds int             `mapstructure:"timeout_seconds" yaml:"timeout_seconds" validate:"gte=0"`
	MaxAttempts    int             `mapstructure:"max_attempts"    yaml:"max_attempts"    validate:"gte=0"`
	RetryDelay     time.Duration   `mapstructure:"retry_delay"     yaml:"retry_delay"     validate:"gte=0"`
	Concepts       []ConceptConfig `mapstructure:"concepts"        yaml:"concepts"        validate:"dive"`
}

// ConceptConfig names one provider concept type exposed as an entity. The entity name is
// derived from Type, so it is kept as a list value rather than a map key (viper lowercases keys).
type ConceptConfig struct {
	Type        string `mapstructure:"type"        yaml:"type"        validate:"required"`
	Description string `mapstructure:"description" yaml:"description"`
}

// PipelineConfig configures the token classification model behind the pipeline annotator.
type PipelineConfig struct {
	Enabled   bool   `mapstructure:"enabled"    yaml:"enabled"`
	ModelPath string `mapstructure:"model_path" yaml:"model_path" validate:"required_if=Enabled true"`
	Name      string `mapstructure:"name"       yaml:"name"`
}

// RedisCacheConfig configures the idempotency cache. An empty URL disables caching.
type RedisCacheConfig struct {
	URL          string        `mapstructure:"url"           yaml:"url"`
	TTL          time.Duration `mapstructure:"ttl"           yaml:"ttl"           validate:"gte=0"`
	Prefix       string        `mapstructure:"prefix"        yaml:"prefix"`
	DeadlineSkew time.Duration `mapstructure:"deadline_skew" yaml:"deadline_skew" validate:"gte=0"`
	StoreTimeout time.Duration `mapstructure:"store_timeout" yaml:"store_timeout" validate:"gte=0"`
}

type MetricsConfig struct {
	Namespace string `mapstructure:"namespace" yaml:"namespace"`
}

type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"      yaml:"enabled"`
	Endpoint    string `mapstructure:"endpoint"     yaml:"endpoint"`
	Insecure    bool   `mapstructure:"insecure"     yaml:"insecure"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
}
