package redis

// Config holds Redis connection settings
type Config struct {
	// URL is the Redis connection URL (redis://...)
	URL string
	// PoolSize is the maximum number of connections
	PoolSize int
	// MinIdleConns is the minimum number of idle connections to keep open
	MinIdleConns int
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
	}
}
