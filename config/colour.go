package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Colour is a packed 0xRRGGBB colour. In YAML it is written as a hex
// string, "#ed553b" or "0xed553b".
type Colour uint32

// ParseColour parses a hex colour string.
func ParseColour(s string) (Colour, error) {
	digits := strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(digits, "#"):
		digits = digits[1:]
	case strings.HasPrefix(digits, "0x"), strings.HasPrefix(digits, "0X"):
		digits = digits[2:]
	}
	if len(digits) != 6 {
		return 0, fmt.Errorf("colour %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("colour %q: %w", s, err)
	}
	return Colour(v), nil
}

// RGB returns the colour channels.
func (c Colour) RGB() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

func (c Colour) String() string {
	return fmt.Sprintf("#%06x", uint32(c))
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *Colour) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: colour must be a string", node.Line)
	}
	parsed, err := ParseColour(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*c = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (c Colour) MarshalYAML() (any, error) {
	return c.String(), nil
}
