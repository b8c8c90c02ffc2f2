package enums

import "fmt"

// ModifierName enumerates the menu modifier kinds.
type ModifierName string

const (
	ModifierNameAddIngredient ModifierName = "add_ingredient"
	ModifierNameAllergens     ModifierName = "allergens"
)

var validModifierNames = []ModifierName{
	ModifierNameAddIngredient,
	ModifierNameAllergens,
}

// IsValid reports whether the value is a known ModifierName.
func (m ModifierName) IsValid() bool {
	for _, candidate := range validModifierNames {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseModifierName converts raw input into a ModifierName.
func ParseModifierName(value string) (ModifierName, error) {
	for _, candidate := range validModifierNames {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid modifier name %q", value)
}
