package cache

// Config holds configuration for the Redis connection.
type Config struct {
	// Addr is the host:port of the Redis server.
	Addr string `mapstructure:"addr" default:"localhost:6379"`
	// Password authenticates the connection when set.
	Password string `mapstructure:"password" default:""`
	// DB selects the logical database.
	DB int `mapstructure:"db" default:"0"`
	// TimeoutSeconds bounds dialing and every command.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"5"`
}
