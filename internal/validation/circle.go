package validation

import (
	"fmt"
	"strings"
)

const (
	minCircleNameLen = 3
	maxCircleNameLen = 120
	maxCircleDescLen = 2000
)

var reservedCircleNames = map[string]struct{}{
	"admin":    {},
	"api":      {},
	"auth":     {},
	"circles":  {},
	"posts":    {},
	"comments": {},
	"messages": {},
	"reports":  {},
	"users":    {},
	"staff":    {},
	"metrics":  {},
	"ws":       {},
	"login":    {},
	"signup":   {},
}

// ValidateCircleName validates circle name length and reserved names.
func ValidateCircleName(name string) error {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) < minCircleNameLen {
		return fmt.Errorf("circle name must be at least %d characters", minCircleNameLen)
	}
	if len(trimmed) > maxCircleNameLen {
		return fmt.Errorf("circle name must be at most %d characters", maxCircleNameLen)
	}
	if _, exists := reservedCircleNames[strings.ToLower(trimmed)]; exists {
		return fmt.Errorf("circle name is reserved")
	}
	return nil
}

// ValidateCircleDescription validates circle description length.
func ValidateCircleDescription(desc string) error {
	if len(desc) > maxCircleDescLen {
		return fmt.Errorf("circle description must be at most %d characters", maxCircleDescLen)
	}
	return nil
}
