package text

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"speech-relay/pkg/models"
)

func defaultCleaning() models.ResolvedCleaning {
	return (*models.CleaningOptions)(nil).Resolve()
}

func TestCleanRemovesURLs(t *testing.T) {
	opts := models.ResolvedCleaning{RemoveURLs: true}

	got := Clean("See https://example.com now", opts)
	assert.Equal(t, "See now", got)
}

func TestCleanRemovesMarkdown(t *testing.T) {
	opts := models.ResolvedCleaning{RemoveMarkdown: true}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"жирный текст", "это **важно** знать", "это важно знать"},
		{"курсив", "это *важно* знать", "это важно знать"},
		{"заголовок", "## Заголовок", "Заголовок"},
		{"ссылка оставляет подпись", "смотри [документацию](https://docs.example.com)", "смотри документацию"},
		{"картинка удаляется целиком", "вот ![схема](img.png) выше", "вот выше"},
		{"код в строке", "вызови `doWork()` отсюда", "вызови doWork() отсюда"},
		{"зачеркнутый", "~~старый~~ новый", "старый новый"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.input, opts))
		})
	}
}

func TestCleanRemovesEmoji(t *testing.T) {
	opts := models.ResolvedCleaning{RemoveEmoji: true}

	got := Clean("привет 🎵 мир 🇷🇺", opts)
	assert.Equal(t, "привет мир", got)
}

func TestCleanRemovesCitationNumbers(t *testing.T) {
	opts := models.ResolvedCleaning{RemoveCitationNumbers: true}

	got := Clean("Это доказано.12 Продолжение текста.", opts)
	assert.Equal(t, "Это доказано. Продолжение текста.", got)
}

func TestCleanCustomKeywords(t *testing.T) {
	opts := models.ResolvedCleaning{CustomKeywords: "[заметка],TODO"}

	// Ключевые слова удаляются как литералы, скобки не считаются шаблоном
	got := Clean("текст [заметка] и TODO конец", opts)
	assert.Equal(t, "текст и конец", got)
}

func TestCleanCollapsesWhitespace(t *testing.T) {
	opts := models.ResolvedCleaning{RemoveLineBreaks: true}

	got := Clean("первая\nвторая\t\tтретья   строка", opts)
	assert.Equal(t, "первая вторая третья строка", got)
}

func TestCleanKeepsLineBreaksWhenDisabled(t *testing.T) {
	opts := models.ResolvedCleaning{RemoveLineBreaks: false}

	got := Clean("первая   строка\nвторая", opts)
	assert.Equal(t, "первая строка\nвторая", got)
}

func TestCleanEmptyInput(t *testing.T) {
	if got := Clean("", defaultCleaning()); got != "" {
		t.Errorf("ожидалась пустая строка, получено %q", got)
	}
}

func TestCleanIdempotent(t *testing.T) {
	opts := defaultCleaning()

	input := "Обычный чистый текст без разметки."
	once := Clean(input, opts)
	twice := Clean(once, opts)

	if once != twice {
		t.Errorf("очистка не идемпотентна: %q != %q", once, twice)
	}
}

func TestCleanFullPipeline(t *testing.T) {
	opts := defaultCleaning()

	input := "# Новости\n\nЧитай **статью** на https://news.example.com 🎉 сегодня."
	got := Clean(input, opts)
	assert.Equal(t, "Новости Читай статью на сегодня.", got)
}
