package config

type Config struct {
	HTTP HTTPConfig
	DB   DBConfig
	Auth AuthConfig
	NATS NATSConfig
}

type HTTPConfig struct {
	Port int
}

type DBConfig struct {
	DSN string
}

type AuthConfig struct {
	AllowedEmails []string
}

type NATSConfig struct {
	URL string
}
