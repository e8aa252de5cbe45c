package server

import "strings"

// Таблица алиасов голосов в стиле OpenAI -> голоса провайдера
var voiceAliases = map[string]string{
	"alloy":   "zh-CN-YunxiNeural",
	"echo":    "zh-CN-YunjianNeural",
	"fable":   "zh-CN-YunxiaNeural",
	"onyx":    "zh-CN-YunyangNeural",
	"nova":    "zh-CN-XiaoxiaoNeural",
	"shimmer": "zh-CN-XiaohanNeural",
}

// Модели, отдаваемые списком /v1/models
var knownModels = []string{"tts-1", "tts-1-hd"}

// resolveVoice выбирает голос провайдера: явный voice имеет приоритет
// (алиас мапится, остальное считается идентификатором провайдера),
// иначе берется суффикс модели после последнего дефиса
func resolveVoice(voice, model string) (string, bool) {
	if voice != "" {
		if mapped, ok := voiceAliases[voice]; ok {
			return mapped, true
		}
		return voice, true
	}

	if model != "" {
		suffix := model
		if idx := strings.LastIndex(model, "-"); idx >= 0 {
			suffix = model[idx+1:]
		}
		if mapped, ok := voiceAliases[suffix]; ok {
			return mapped, true
		}
	}

	return "", false
}
