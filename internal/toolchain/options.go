package toolchain

import "strings"

// strippedFlagPrefixes are build-system flags that the driving build tool
// passes along but that a plain compiler does not understand.
var strippedFlagPrefixes = []string{
	"-Xep",
	"-XepOpt:",
	"-XepDisableAllChecks",
	"-Werror:",
	"-extra_checks",
}

// SanitizeFlags returns flags with build-system-specific entries removed.
// The input slice is not modified.
func SanitizeFlags(flags []string) []string {
	sanitized := make([]string, 0, len(flags))

	for _, flag := range flags {
		if stripped(flag) {
			continue
		}

		sanitized = append(sanitized, flag)
	}

	return sanitized
}

func stripped(flag string) bool {
	for _, prefix := range strippedFlagPrefixes {
		if strings.HasPrefix(flag, prefix) {
			return true
		}
	}

	return false
}
