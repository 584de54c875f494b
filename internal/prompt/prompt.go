// Package prompt renders generation requests for land-record translation.
// Building a prompt is a pure function of the chunk text, the language pair
// and the optional prior-translation context.
package prompt

import "fmt"

// maxContextRunes caps how much prior translated output is carried into a
// continuation prompt.
const maxContextRunes = 200

// translationTemplate opens a document: it embeds the fixed glossary of
// administrative and land-record vocabulary and the preservation rules.
const translationTemplate = `You are an expert translator specializing in South Asian land records and legal documents.

TASK: Translate the following %s text to %s.

IMPORTANT GUIDELINES:
1. Preserve all numbers, dates, and measurements exactly
2. Keep proper nouns (names, places) in original form with transliteration
3. Use standard English equivalents for these terms:
   - کھسرا/खसरा = Khasra (plot number)
   - جماع بندی/जमाबंदी = Jamabandi (record of rights)
   - پٹواری/पटवारी = Patwari (village record keeper)
   - تحصیل/तहसील = Tehsil (administrative division)
   - موضع/मौजा = Mauza (village)
   - مالک/मालिक = Malik (owner)
   - وارث/वारिस = Waris (heir)
   - انتقال/इंतक़ाल = Intiqal (transfer of ownership)
4. Maintain document structure and formatting
5. If unsure about a term, keep it in original script with [?] marker

TEXT TO TRANSLATE:
%s

TRANSLATION:`

// continuationTemplate carries prior translated output forward so the model
// stays consistent across chunk boundaries.
const continuationTemplate = `Continue translating this document. Previous context:
%s

NEW TEXT TO TRANSLATE:
%s

TRANSLATION (maintain consistency with previous):`

// Build renders the prompt for one chunk. An empty context selects the
// opening template with the glossary; otherwise the continuation template is
// used with at most maxContextRunes of the prior translated output.
func Build(text, sourceLang, targetLang, context string) string {
	if context != "" {
		return fmt.Sprintf(continuationTemplate, headRunes(context, maxContextRunes), text)
	}
	return fmt.Sprintf(translationTemplate, sourceLang, targetLang, text)
}

func headRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
