package config

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// ParseColor parses an ARGB color. Accepted forms are #AARRGGBB, #RRGGBB
// (opaque), 0xAARRGGBB and SVG color names such as "orange". An empty
// string is transparent.
func ParseColor(value string) (uint32, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}

	lower := strings.ToLower(value)
	if named, ok := colornames.Map[lower]; ok {
		return uint32(named.A)<<24 | uint32(named.R)<<16 | uint32(named.G)<<8 | uint32(named.B), nil
	}

	var digits string
	switch {
	case strings.HasPrefix(lower, "#"):
		digits = lower[1:]
	case strings.HasPrefix(lower, "0x"):
		digits = lower[2:]
		if len(digits) != 8 {
			return 0, fmt.Errorf("invalid color %q: 0x colors need 8 digits", value)
		}
	default:
		return 0, fmt.Errorf("invalid color %q", value)
	}

	parsed, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", value, err)
	}
	switch len(digits) {
	case 6:
		return 0xFF000000 | uint32(parsed), nil
	case 8:
		return uint32(parsed), nil
	}
	return 0, fmt.Errorf("invalid color %q: expected 6 or 8 hex digits", value)
}

// FormatColor renders an ARGB value the way ParseColor reads it back.
func FormatColor(argb uint32) string {
	return fmt.Sprintf("#%08X", argb)
}
