package azure

import (
	"fmt"
	"regexp"
	"strings"
)

// Тег паузы вида <break time="500ms"/> должен дойти до провайдера
// без экранирования
var breakTagRe = regexp.MustCompile(`<break\s[^>]*/?>`)

const breakPlaceholder = "\x00BREAK%d\x00"

// BuildSSML собирает SSML документ для одного чанка текста с параметрами
// голоса, стиля и просодии. Метасимволы XML экранируются, встроенные
// теги пауз сохраняются байт в байт
func BuildSSML(text, voice, style string, ratePercent, pitchPercent int) string {
	escaped := escapeWithBreaks(text)

	return fmt.Sprintf(
		`<speak version='1.0' xmlns='http://www.w3.org/2001/10/synthesis' xmlns:mstts='https://www.w3.org/2001/mstts' xml:lang='zh-CN'>`+
			`<voice name='%s'>`+
			`<mstts:express-as style='%s'>`+
			`<prosody rate='%+d%%' pitch='%+d%%'>%s</prosody>`+
			`</mstts:express-as>`+
			`</voice>`+
			`</speak>`,
		voice, style, ratePercent, pitchPercent, escaped)
}

// escapeWithBreaks экранирует &, < и >, предварительно заменив теги пауз
// плейсхолдерами и вернув их обратно после экранирования
func escapeWithBreaks(text string) string {
	breaks := breakTagRe.FindAllString(text, -1)
	for i, tag := range breaks {
		text = strings.Replace(text, tag, fmt.Sprintf(breakPlaceholder, i), 1)
	}

	text = strings.ReplaceAll(text, "&", "&amp;")
	text = strings.ReplaceAll(text, "<", "&lt;")
	text = strings.ReplaceAll(text, ">", "&gt;")

	for i, tag := range breaks {
		text = strings.Replace(text, fmt.Sprintf(breakPlaceholder, i), tag, 1)
	}

	return text
}
