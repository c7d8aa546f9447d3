package telemetry

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultName is shown when a reading carries no device identifier.
const DefaultName = "Bike"

var digitRun = regexp.MustCompile(`[0-9]+`)

// ResolveName returns the display name for a device.
//
// Priority: a non-empty override wins verbatim, then "Bike" for an empty
// device, then "Bike <n>" using the first digit run of the device id, and
// finally a humanized form of the id ("smart_trainer" -> "Smart Trainer",
// "SmartTrainerPro" -> "Smart Trainer Pro").
func ResolveName(device, override string) string {
	if override != "" {
		return override
	}
	if device == "" {
		return DefaultName
	}
	if n := digitRun.FindString(device); n != "" {
		return DefaultName + " " + n
	}
	return humanize(device)
}

func humanize(id string) string {
	var b strings.Builder
	for _, r := range strings.ReplaceAll(id, "_", " ") {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}

	words := strings.Fields(b.String())
	for i, w := range words {
		words[i] = titleWord(w)
	}
	return strings.Join(words, " ")
}

// titleWord upper-cases the first rune of w and lower-cases the rest.
func titleWord(w string) string {
	first, size := utf8.DecodeRuneInString(w)
	return string(unicode.ToUpper(first)) + strings.ToLower(w[size:])
}
