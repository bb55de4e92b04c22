package translation

import (
	"github.com/leonelquinteros/gotext"
	"strings"
)

// Configure loads the translations for lang from the locales directory
func Configure(localesDir, lang string) {
	gotext.Configure(localesDir, strings.ToLower(lang), "default")
}

func GetLanguage() string {
	lang := gotext.GetLanguage()

	if lang == "und" || lang == "" {
		return "en"
	}

	return lang
}

// Translate returns the translation of msgID formatted with vars. Unknown ids
// are returned as is, so every id doubles as the English text.
func Translate(msgID string, vars ...interface{}) string {
	return gotext.Get(msgID, vars...)
}
