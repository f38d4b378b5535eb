package translation

import (
	"strings"

	"github.com/leonelquinteros/gotext"
)

// Configure loads the "default" domain for lang from the locales directory.
// Message ids are the English texts, so a missing catalog falls back to English.
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

func Translate(msgID string, vars ...interface{}) string {
	return gotext.Get(msgID, vars...)
}
