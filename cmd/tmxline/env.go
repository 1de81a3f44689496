package main

import (
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/oukeidos/tmxline/internal/logger"
)

// envDefaults lets deployments preset flag defaults without wrapping the
// binary. Flags always win over the environment.
type envDefaults struct {
	SourceLang string `env:"TMXLINE_SOURCE" env-default:"en"`
	TargetLang string `env:"TMXLINE_TARGET" env-default:"zh_cn"`
	LogFile    string `env:"TMXLINE_LOG_FILE"`
}

func loadEnvDefaults() envDefaults {
	var d envDefaults
	if err := cleanenv.ReadEnv(&d); err != nil {
		logger.Warn("Failed to read environment defaults", "error", err)
		return envDefaults{SourceLang: "en", TargetLang: "zh_cn"}
	}
	return d
}
