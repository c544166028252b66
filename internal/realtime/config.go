package realtime

import (
	"elexon"
)

type Config struct {
	NatsURL       string
	SubjectPrefix string
	JWTSecret     string
	RealtimePort  string
}

func ConfigFromApp(cfg elexon.AppConfig) Config {
	return Config{
		NatsURL:       cfg.NatsConfig.URL,
		SubjectPrefix: cfg.NatsConfig.SubjectPrefix,
		JWTSecret:     cfg.JWTConfig.Secret,
		RealtimePort:  cfg.RealtimePort,
	}
}
