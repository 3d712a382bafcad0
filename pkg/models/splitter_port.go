package models

import (
	"regexp"
	"strings"
)

// PredefinedModels are the splitter models offered as one-click choices. Any other model
// name is accepted as free text.
var PredefinedModels = []string{"ADHS C620 1", "ADHS C620 2", "ADHS C650", "JT C650", "KAREN 650"}

var portPattern = regexp.MustCompile(`^\d/\d+$`)

// ValidPort reports whether port has the slot/port form, e.g. "7/9" or "3/16".
func ValidPort(port string) bool {
	return portPattern.MatchString(port)
}

// FormatPort trims the input and appends the slash after a lone leading digit,
// so "7" becomes "7/".
func FormatPort(input string) string {
	value := strings.TrimSpace(input)
	if len(value) == 1 && value[0] >= '0' && value[0] <= '9' {
		return value + "/"
	}

	return value
}
