package config

import "os"

type Config struct {
	MongoURI      string
	MongoDatabase string
	RedisAddr     string
	NATSURL       string
	HTTPPort      string

	// TemplateDir optionally overrides the embedded pass prompt templates.
	TemplateDir string
}

func Load() *Config {
	return &Config{
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "pairlens"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		NATSURL:       os.Getenv("NATS_URL"),
		HTTPPort:      getEnv("HTTP_PORT", "8080"),
		TemplateDir:   os.Getenv("TEMPLATE_DIR"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
