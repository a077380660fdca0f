package app

import (
	"github.com/ordalabs/orda-backend/internal/logger"
	"github.com/ordalabs/orda-backend/internal/utils"
)

type Config struct {
	Port            string
	ScheduleMinutes int
	RetrieveTopK    int
	VerifyTopN      int
	VerifierModel   string
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		Port:            utils.GetEnv("PORT", "8080", log),
		ScheduleMinutes: utils.GetEnvAsInt("PIPELINE_SCHEDULE_MINUTES", 60, log),
		RetrieveTopK:    utils.GetEnvAsInt("RAG_RETRIEVE_TOP_K", 10, log),
		VerifyTopN:      utils.GetEnvAsInt("RAG_VERIFY_TOP_N", 3, log),
		VerifierModel:   utils.GetEnv("OPENAI_VERIFIER_MODEL", "gpt-4o-mini", log),
	}
}
