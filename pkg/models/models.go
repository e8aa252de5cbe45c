package models

// SpeechRequest представляет входящий запрос на синтез речи
// в формате, совместимом с OpenAI /v1/audio/speech
type SpeechRequest struct {
	Model           string           `json:"model,omitempty"`            // Модель/алиас голоса, например tts-1-alloy
	Input           string           `json:"input"`                      // Текст для озвучивания (обязательное поле)
	Voice           string           `json:"voice,omitempty"`            // Явный идентификатор голоса провайдера или алиас
	Speed           *float64         `json:"speed,omitempty"`            // Скорость речи, диапазон [0.25, 2.0]
	Pitch           *float64         `json:"pitch,omitempty"`            // Высота тона
	Style           string           `json:"style,omitempty"`            // Стиль речи, по умолчанию general
	Stream          bool             `json:"stream,omitempty"`           // Потоковая отдача аудио
	Concurrency     int              `json:"concurrency,omitempty"`      // Лимит одновременных запросов к провайдеру
	ChunkSize       int              `json:"chunk_size,omitempty"`       // Максимальная длина одного чанка текста
	CleaningOptions *CleaningOptions `json:"cleaning_options,omitempty"` // Настройки очистки текста
}

// CleaningOptions содержит переключатели очистки текста перед синтезом.
// Указатели нужны, чтобы отличать отсутствующее поле от явного false
type CleaningOptions struct {
	RemoveMarkdown        *bool  `json:"remove_markdown,omitempty"`         // Убирать markdown разметку
	RemoveEmoji           *bool  `json:"remove_emoji,omitempty"`            // Убирать эмодзи
	RemoveURLs            *bool  `json:"remove_urls,omitempty"`             // Убирать голые ссылки
	RemoveLineBreaks      *bool  `json:"remove_line_breaks,omitempty"`      // Схлопывать переносы строк в пробел
	RemoveCitationNumbers *bool  `json:"remove_citation_numbers,omitempty"` // Убирать номера сносок у знаков препинания
	CustomKeywords        string `json:"custom_keywords,omitempty"`         // Список ключевых слов через запятую для удаления
}

// Значения по умолчанию для запроса на синтез
const (
	DefaultSpeed       = 1.0
	DefaultPitch       = 1.0
	DefaultStyle       = "general"
	DefaultConcurrency = 10
	DefaultChunkSize   = 300
)

// ResolvedCleaning представляет настройки очистки с подставленными
// значениями по умолчанию (все удаления включены, ключевые слова пусты)
type ResolvedCleaning struct {
	RemoveMarkdown        bool
	RemoveEmoji           bool
	RemoveURLs            bool
	RemoveLineBreaks      bool
	RemoveCitationNumbers bool
	CustomKeywords        string
}

// Resolve подставляет значения по умолчанию вместо отсутствующих полей
func (o *CleaningOptions) Resolve() ResolvedCleaning {
	resolved := ResolvedCleaning{
		RemoveMarkdown:        true,
		RemoveEmoji:           true,
		RemoveURLs:            true,
		RemoveLineBreaks:      true,
		RemoveCitationNumbers: true,
	}

	if o == nil {
		return resolved
	}

	if o.RemoveMarkdown != nil {
		resolved.RemoveMarkdown = *o.RemoveMarkdown
	}
	if o.RemoveEmoji != nil {
		resolved.RemoveEmoji = *o.RemoveEmoji
	}
	if o.RemoveURLs != nil {
		resolved.RemoveURLs = *o.RemoveURLs
	}
	if o.RemoveLineBreaks != nil {
		resolved.RemoveLineBreaks = *o.RemoveLineBreaks
	}
	if o.RemoveCitationNumbers != nil {
		resolved.RemoveCitationNumbers = *o.RemoveCitationNumbers
	}
	resolved.CustomKeywords = o.CustomKeywords

	return resolved
}

// SpeedOrDefault возвращает скорость речи с учетом значения по умолчанию
func (r *SpeechRequest) SpeedOrDefault() float64 {
	if r.Speed == nil {
		return DefaultSpeed
	}
	return *r.Speed
}

// PitchOrDefault возвращает высоту тона с учетом значения по умолчанию
func (r *SpeechRequest) PitchOrDefault() float64 {
	if r.Pitch == nil {
		return DefaultPitch
	}
	return *r.Pitch
}

// StyleOrDefault возвращает стиль речи с учетом значения по умолчанию
func (r *SpeechRequest) StyleOrDefault() string {
	if r.Style == "" {
		return DefaultStyle
	}
	return r.Style
}

// ConcurrencyOrDefault возвращает лимит параллелизма с учетом значения по умолчанию
func (r *SpeechRequest) ConcurrencyOrDefault() int {
	if r.Concurrency < 1 {
		return DefaultConcurrency
	}
	return r.Concurrency
}

// ChunkSizeOrDefault возвращает максимальную длину чанка с учетом значения по умолчанию
func (r *SpeechRequest) ChunkSizeOrDefault() int {
	if r.ChunkSize < 1 {
		return DefaultChunkSize
	}
	return r.ChunkSize
}
