// Package translate formats user visible messages in the user's language.
package translate

import (
	"log"
	"os"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// LanguageEnv overrides the detected system locales when set.
const LanguageEnv = "LC3_LANG"

var printer = NewPrinter(systemLocales()...)

// systemLocales returns the preferred locales, most preferred first.
func systemLocales() (locales []string) {
	if lang := os.Getenv(LanguageEnv); lang != "" {
		return []string{lang}
	}

	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("lc3: locale: %v", err)
	}

	if len(locales) == 0 {
		locales = []string{"en-US"}
	}

	return
}

// NewPrinter returns a message printer for the best match of the locales.
func NewPrinter(locales ...string) *message.Printer {
	if len(locales) == 0 {
		return message.NewPrinter(language.AmericanEnglish)
	}
	return message.NewPrinter(message.MatchLanguage(locales...))
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}
