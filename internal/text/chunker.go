package text

import "strings"

// Разделители предложений и клауз для поддерживаемых языков,
// включая полноширинные варианты
const boundaryRunes = ".?!,;:\n。？！，；："

// Chunk разбивает текст на чанки длиной не более maxLen рун по границам
// предложений. Порядок сегментов сохраняется, пустых чанков не бывает.
// Сегмент длиннее maxLen без единой границы внутри отдается целиком:
// жесткая верхняя граница не гарантируется для одиночного сегмента.
// Если ни одной границы не нашлось во всем тексте, применяется
// нарезка фиксированной ширины ровно по maxLen рун
func Chunk(text string, maxLen int) []string {
	if strings.TrimSpace(text) == "" || maxLen < 1 {
		return nil
	}

	// Без единой границы жадный проход не дает ни одного разреза,
	// поэтому сразу нарезаем фиксированной шириной
	if !strings.ContainsAny(text, boundaryRunes) {
		return sliceFixed(text, maxLen)
	}

	segments := splitAfterBoundaries(text)

	var chunks []string
	var buf strings.Builder
	bufLen := 0

	for _, segment := range segments {
		segLen := len([]rune(segment))
		if bufLen > 0 && bufLen+segLen > maxLen {
			if chunk := strings.TrimSpace(buf.String()); chunk != "" {
				chunks = append(chunks, chunk)
			}
			buf.Reset()
			bufLen = 0
		}
		buf.WriteString(segment)
		bufLen += segLen
	}

	if chunk := strings.TrimSpace(buf.String()); chunk != "" {
		chunks = append(chunks, chunk)
	}

	if len(chunks) == 0 {
		return sliceFixed(text, maxLen)
	}

	return chunks
}

// splitAfterBoundaries режет текст на сегменты, оставляя разделитель
// в конце своего сегмента
func splitAfterBoundaries(text string) []string {
	var segments []string
	var buf strings.Builder

	for _, r := range text {
		buf.WriteRune(r)
		if strings.ContainsRune(boundaryRunes, r) {
			segments = append(segments, buf.String())
			buf.Reset()
		}
	}
	if buf.Len() > 0 {
		segments = append(segments, buf.String())
	}

	return segments
}

// sliceFixed нарезает текст кусками ровно по maxLen рун
func sliceFixed(text string, maxLen int) []string {
	runes := []rune(strings.TrimSpace(text))

	var chunks []string
	for start := 0; start < len(runes); start += maxLen {
		end := start + maxLen
		if end > len(runes) {
			end = len(runes)
		}
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}

	return chunks
}
