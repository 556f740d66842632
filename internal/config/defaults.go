package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		// Loopback only; the profile never listens beyond the device.
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8090
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = ".konomi/konomi.db"
	}
	if cfg.Classifier.TablePath == "" {
		cfg.Classifier.TablePath = ".konomi/domains.json"
	}
	if cfg.Ingest.MaxBatch == 0 {
		cfg.Ingest.MaxBatch = 10000
	}
	// Ingest.Parallelism 0 means one worker per CPU, resolved at ingest time.
	// Classifier.Watch nil means true, resolved via WatchOrDefault.
}
