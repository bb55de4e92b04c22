package helpers

import (
	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"strings"
	"time"
)

func EscapeMarkdownV2(text string) string {
	charactersToEscape := []string{".", "-", "_", "*", "[", "]", "(", ")", "~", "`", ">", "#", "+", "=", "|", "{", "}", "!"}

	for _, char := range charactersToEscape {
		text = strings.ReplaceAll(text, char, "\\"+char)
	}
	return text
}

// FormatPriceUS renders a USD price with thousand separators. Precision depends
// on magnitude so that both large caps and sub-cent tokens stay readable.
func FormatPriceUS(price float64, escapeMarkdown bool) string {
	decimals := 6

	if price > 1.2 {
		decimals = 2
	} else if price < 0.00001 {
		decimals = 8
	}

	p := message.NewPrinter(language.English)
	formatted := p.Sprintf("%.*f", decimals, price)

	if escapeMarkdown {
		return EscapeMarkdownV2(formatted)
	}
	return formatted
}

// FormatAge describes how long ago t happened, e.g. "3 minutes ago"
func FormatAge(t time.Time, escapeMarkdown bool) string {
	age := humanize.Time(t)
	if escapeMarkdown {
		return EscapeMarkdownV2(age)
	}
	return age
}
