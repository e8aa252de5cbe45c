package text

import (
	"regexp"
	"strings"

	"speech-relay/pkg/models"
)

// Регулярные выражения для очистки текста перед синтезом
var (
	urlRe = regexp.MustCompile(`https?://[^\s<>"]+`)

	mdImageRe     = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	mdLinkRe      = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	mdCodeBlockRe = regexp.MustCompile("```[\\s\\S]*?```")
	mdCodeSpanRe  = regexp.MustCompile("`([^`]*)`")
	mdHeadingRe   = regexp.MustCompile(`(?m)^#{1,6}[ \t]*`)
	mdBoldRe      = regexp.MustCompile(`\*{1,3}|_{2,3}`)
	mdStrikeRe    = regexp.MustCompile(`~~`)

	// Символы с эмодзи-представлением: пиктограммы, смайлы, флаги,
	// модификаторы и селекторы вариантов
	emojiRe = regexp.MustCompile(`[\x{1F300}-\x{1FAFF}]|[\x{2600}-\x{27BF}]|[\x{1F1E6}-\x{1F1FF}]|[\x{FE00}-\x{FE0F}]|[\x{200D}]|[\x{2B00}-\x{2BFF}]`)

	// Номер сноски: одна-две цифры сразу после знака конца предложения
	citationRe = regexp.MustCompile(`([。！？．.!?;；])\s*\d{1,2}(\s|$)`)

	allSpaceRe  = regexp.MustCompile(`\s+`)
	lineSpaceRe = regexp.MustCompile(`[ \t]+`)
)

// Clean очищает текст от разметки, ссылок, эмодзи и прочего мусора
// перед разбиением на чанки. Функция чистая и не падает ни на каком входе.
// Порядок этапов фиксированный: ссылки -> markdown -> ключевые слова ->
// эмодзи -> сноски -> схлопывание пробелов -> обрезка краев
func Clean(text string, opts models.ResolvedCleaning) string {
	if opts.RemoveURLs {
		text = urlRe.ReplaceAllString(text, "")
	}

	if opts.RemoveMarkdown {
		text = mdImageRe.ReplaceAllString(text, "")
		text = mdLinkRe.ReplaceAllString(text, "$1")
		text = mdCodeBlockRe.ReplaceAllString(text, "")
		text = mdCodeSpanRe.ReplaceAllString(text, "$1")
		text = mdHeadingRe.ReplaceAllString(text, "")
		text = mdBoldRe.ReplaceAllString(text, "")
		text = mdStrikeRe.ReplaceAllString(text, "")
	}

	if opts.CustomKeywords != "" {
		for _, keyword := range strings.Split(opts.CustomKeywords, ",") {
			keyword = strings.TrimSpace(keyword)
			if keyword == "" {
				continue
			}
			// Ключевое слово удаляется как литерал, не как шаблон
			keywordRe, err := regexp.Compile(regexp.QuoteMeta(keyword))
			if err != nil {
				continue
			}
			text = keywordRe.ReplaceAllString(text, "")
		}
	}

	if opts.RemoveEmoji {
		text = emojiRe.ReplaceAllString(text, "")
	}

	if opts.RemoveCitationNumbers {
		text = citationRe.ReplaceAllString(text, "$1$2")
	}

	if opts.RemoveLineBreaks {
		text = allSpaceRe.ReplaceAllString(text, " ")
	} else {
		text = lineSpaceRe.ReplaceAllString(text, " ")
	}

	return strings.TrimSpace(text)
}
