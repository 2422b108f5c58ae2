package utils

import (
	"fmt"
	"strings"
)

// ParseHexColor parses "#RGB" or "#RRGGBB" (leading '#' optional) into RGB
// components. Returns an error for anything else.
func ParseHexColor(s string) (r, g, b uint8, err error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "#")

	hexVal := func(c byte) (uint8, bool) {
		switch {
		case c >= '0' && c <= '9':
			return c - '0', true
		case c >= 'a' && c <= 'f':
			return c - 'a' + 10, true
		case c >= 'A' && c <= 'F':
			return c - 'A' + 10, true
		}
		return 0, false
	}

	switch len(s) {
	case 3:
		vals := make([]uint8, 3)
		for i := 0; i < 3; i++ {
			v, ok := hexVal(s[i])
			if !ok {
				return 0, 0, 0, fmt.Errorf("invalid hex color %q", s)
			}
			vals[i] = v*16 + v
		}
		return vals[0], vals[1], vals[2], nil
	case 6:
		vals := make([]uint8, 3)
		for i := 0; i < 3; i++ {
			hi, ok1 := hexVal(s[i*2])
			lo, ok2 := hexVal(s[i*2+1])
			if !ok1 || !ok2 {
				return 0, 0, 0, fmt.Errorf("invalid hex color %q", s)
			}
			vals[i] = hi*16 + lo
		}
		return vals[0], vals[1], vals[2], nil
	}
	return 0, 0, 0, fmt.Errorf("invalid hex color %q", s)
}

// NormalizeHexColor returns s as canonical "#RRGGBB", or fallback when s does
// not parse as a color.
func NormalizeHexColor(s, fallback string) string {
	r, g, b, err := ParseHexColor(s)
	if err != nil {
		return fallback
	}
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}
