package structs

import "time"

type Config struct {
	Server   *ServerConfig
	Cors     *CorsConfig
	Database *DatabaseConfig
	Cache    *CacheConfig
	Feed     *FeedConfig
	Media    *MediaConfig
	Email    *EmailConfig
	Auth     *AuthConfig
}

type ServerConfig struct {
	AppName        string        // Syntech Importer
	Environment    string        // development, production
	Port           string        // :8084
	ReadTimeout    time.Duration // in seconds
	WriteTimeout   time.Duration // in seconds
	IdleTimeout    time.Duration // in seconds
	MaxHeaderBytes int           // in bytes
}

type CorsConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	MaxConns     int
	MinConns     int
	MaxLifetime  time.Duration // in seconds
	MaxIdleTime  time.Duration // in seconds
	ReadTimeout  time.Duration // in seconds
	WriteTimeout time.Duration // in seconds
}

type CacheConfig struct {
	Address      string
	Username     string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxRetries   int
	CategoryTTL  time.Duration // how long resolved category ids stay cached
}

// FeedConfig describes the supplier feed endpoint. URL carries the supplier
// key as a query parameter and must never be logged in cleartext.
type FeedConfig struct {
	URL          string
	FetchTimeout time.Duration // whole-feed download, long
	ImageTimeout time.Duration // single image download, short
	MaxBodyBytes int64
}

type MediaConfig struct {
	Dir     string // permanent asset storage directory
	TempDir string // staging area for in-flight downloads
}

type EmailConfig struct {
	ApiKey     string
	From       string
	Recipients []string // run report recipients; empty disables reports
}

type AuthConfig struct {
	AccessTokenSecret string
	ServiceTokenHash  string // bcrypt hash of the automation trigger token
}
