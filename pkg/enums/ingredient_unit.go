package enums

import "fmt"

// IngredientUnit maps to the ingredient_unit_enum enum in Postgres.
type IngredientUnit string

const (
	IngredientUnitMilliliter IngredientUnit = "milliliter"
	IngredientUnitCentiliter IngredientUnit = "centiliter"
	IngredientUnitDeciliter  IngredientUnit = "deciliter"
	IngredientUnitLiter      IngredientUnit = "liter"
)

var validIngredientUnits = []IngredientUnit{
	IngredientUnitMilliliter,
	IngredientUnitCentiliter,
	IngredientUnitDeciliter,
	IngredientUnitLiter,
}

// String implements fmt.Stringer.
func (u IngredientUnit) String() string {
	return string(u)
}

// IsValid reports whether the value is a known IngredientUnit.
func (u IngredientUnit) IsValid() bool {
	for _, candidate := range validIngredientUnits {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseIngredientUnit converts raw input into an IngredientUnit.
func ParseIngredientUnit(value string) (IngredientUnit, error) {
	for _, candidate := range validIngredientUnits {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ingredient unit %q", value)
}
