package config

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Path:       "~/.lifelog",
			SQLiteFile: "lifelog.db",
		},
		Images: ImagesConfig{
			Dir: "images",
		},
		Classifier: ClassifierConfig{
			Model:          "gemini-1.5-flash",
			Endpoint:       "https://generativelanguage.googleapis.com/v1beta",
			TimeoutSeconds: 30,
			MaxRetries:     3,
		},
		Web: WebConfig{
			Host: "127.0.0.1",
			Port: 8000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
