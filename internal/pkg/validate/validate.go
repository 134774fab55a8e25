package validate

import "strings"

func Required(value string) bool {
	return strings.TrimSpace(value) != ""
}

// Phone accepts Korean mobile numbers in bare digit form, e.g. 01012345678.
func Phone(value string) bool {
	if len(value) < 10 || len(value) > 11 {
		return false
	}
	if !strings.HasPrefix(value, "01") {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
