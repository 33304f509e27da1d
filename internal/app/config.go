package app

import (
	"github.com/yungbote/sermonclips-backend/internal/jobs"
	"github.com/yungbote/sermonclips-backend/internal/pkg/logger"
	"github.com/yungbote/sermonclips-backend/internal/utils"
)

type Config struct {
	UseLLMForClipSuggestions bool
	DeepSeekAPIKey           string
	EmbeddingsBaseURL        string
	EmbeddingDim             int
	RetryPolicy              jobs.Policy
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		UseLLMForClipSuggestions: utils.GetEnvAsBool("USE_LLM_FOR_CLIP_SUGGESTIONS", false, log),
		DeepSeekAPIKey:           utils.GetEnv("DEEPSEEK_API_KEY", "", nil),
		EmbeddingsBaseURL:        utils.GetEnv("EMBEDDINGS_BASE_URL", "", log),
		EmbeddingDim:             utils.GetEnvAsInt("EMBEDDING_DIM", 384, log),
		RetryPolicy:              jobs.PolicyFromEnv(log),
	}
}
