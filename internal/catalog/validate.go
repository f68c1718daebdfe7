package catalog

import (
	"fmt"
	"strings"
)

// CleanName trims the input and rejects empty names.
func CleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrEmptyName)
	}
	return name, nil
}

func CheckPrice(price float64) error {
	if price < 0 {
		return fmt.Errorf("%w: price must be >= 0", ErrInvalidPrice)
	}
	return nil
}
