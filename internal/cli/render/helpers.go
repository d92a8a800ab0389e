package render

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/sahilm/fuzzy"
)

var (
	errorStyle   = color.New(color.FgRed)
	warningStyle = color.New(color.FgYellow)
	successStyle = color.New(color.FgGreen)
	labelStyle   = color.New(color.Faint)
	nameStyle    = color.New(color.FgCyan, color.Bold)
)

// maxSuggestions caps the "did you mean" list
const maxSuggestions = 3

// FormatError formats an error message with the error icon
func FormatError(message string) string {
	if len(message) > 0 {
		message = strings.ToUpper(message[:1]) + message[1:]
	}
	return errorStyle.Sprintf("❌ %s", message)
}

// FormatWarning formats a warning message with the warning icon
func FormatWarning(message string) string {
	return warningStyle.Sprintf("⚠️  %s", message)
}

// FormatSuccess formats a success message with the success icon
func FormatSuccess(message string) string {
	return successStyle.Sprintf("✅ %s", message)
}

// Suggest returns the candidates closest to input, best match first
func Suggest(input string, candidates []string) []string {
	if input == "" || len(candidates) == 0 {
		return nil
	}
	matches := fuzzy.Find(strings.ToUpper(input), candidates)
	out := make([]string, 0, maxSuggestions)
	for _, m := range matches {
		if len(out) == maxSuggestions {
			break
		}
		out = append(out, m.Str)
	}
	return out
}

// FormatSuggestions renders a "did you mean" hint, or "" without suggestions
func FormatSuggestions(suggestions []string) string {
	if len(suggestions) == 0 {
		return ""
	}
	return fmt.Sprintf("Did you mean %s?", strings.Join(suggestions, ", "))
}

// addressOrDash prints the zero address as "-"
func addressOrDash(addr common.Address) string {
	if addr == zeroAddress {
		return "-"
	}
	return addr.Hex()
}

var zeroAddress common.Address
