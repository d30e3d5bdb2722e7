package clickhouse

import "time"

// Config holds ClickHouse connection settings.
type Config struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port" default:"9000"`
	Database        string        `yaml:"database" default:"cryptosignal"`
	User            string        `yaml:"user" default:"default"`
	Password        string        `yaml:"password"`
	MaxOpenConns    int           `yaml:"max_open_conns" default:"10"`
	MaxIdleConns    int           `yaml:"max_idle_conns" default:"5"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" default:"5m"`
	DialTimeout     time.Duration `yaml:"dial_timeout" default:"5s"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
	MaxExecTime     time.Duration `yaml:"max_execution_time" default:"30s"`
	UseHTTP         bool          `yaml:"use_http"`
	InitSchema      bool          `yaml:"init_schema"`
}

// ClientOption overrides a Config field.
type ClientOption func(*Config)

func WithHost(host string, port int) ClientOption {
	return func(c *Config) {
		c.Host = host
		c.Port = port
	}
}

func WithCredentials(user, password string) ClientOption {
	return func(c *Config) {
		c.User = user
		c.Password = password
	}
}

func WithDatabase(db string) ClientOption {
	return func(c *Config) { c.Database = db }
}

// WithHTTP switches from the native protocol to HTTP.
func WithHTTP(useHTTP bool) ClientOption {
	return func(c *Config) { c.UseHTTP = useHTTP }
}
