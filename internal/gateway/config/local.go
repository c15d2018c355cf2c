package config

import (
	"strings"
	"time"
)

func defaults(env string) Config {
	cfg := Config{
		Port: ":8081",
		Env:  env,
		LLM: LLMConfig{
			Model:   "gemini-2.5-flash",
			RPS:     2,
			Burst:   4,
			Timeout: 30 * time.Second,
		},
		Session: SessionConfig{
			TTL:             2 * time.Hour,
			Max:             4096,
			TriageAttempts:  1,
			ValidateAnswers: true,
		},
		ProfileCacheSize: 512,
		Archive: ArchiveConfig{
			Region: "us-east-1",
			Bucket: "balanceboard-decisions",
			UseSSL: true,
		},
		Log: LogConfig{Level: "info"},
	}
	if strings.EqualFold(env, "local") {
		cfg.HistorySQLitePath = "balanceboard.db"
		cfg.Archive.Endpoint = ""
		cfg.Archive.UseSSL = false
		cfg.Log.Development = true
	}
	return cfg
}
