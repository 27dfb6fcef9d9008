package category

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"unicode"

	"shop-cli/internal/model"
)

// Rand is the randomness DeriveColor draws from.
type Rand interface {
	IntN(n int) int
}

type defaultRand struct{}

func (defaultRand) IntN(n int) int { return rand.IntN(n) }

// DefaultRand returns a Rand backed by the runtime's seeded generator.
func DefaultRand() Rand { return defaultRand{} }

var ErrInvalidColor = errors.New("invalid color")

// DeriveShortName picks a marker for a category: its uppercase letters when it has any,
// otherwise the first three characters upper-cased.
func DeriveShortName(name string) string {
	var caps strings.Builder
	for _, r := range name {
		if unicode.IsUpper(r) {
			caps.WriteRune(r)
		}
	}
	if caps.Len() > 0 {
		return caps.String()
	}
	rs := []rune(name)
	if len(rs) >= 3 {
		return strings.ToUpper(string(rs[:3]))
	}
	return strings.ToUpper(name)
}

func DeriveColor(r Rand) string {
	if r == nil {
		r = DefaultRand()
	}
	return fmt.Sprintf("#%06x", r.IntN(1<<24))
}

// NormalizeColor accepts "#rrggbb" or "rrggbb" in any case and returns "#rrggbb" lower-cased.
func NormalizeColor(s string) (string, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return "", fmt.Errorf("%w: %q (want #rrggbb)", ErrInvalidColor, s)
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return "", fmt.Errorf("%w: %q (want #rrggbb)", ErrInvalidColor, s)
		}
	}
	return "#" + strings.ToLower(s), nil
}

// Spec holds the optional attributes of a new category. Empty fields are derived.
type Spec struct {
	ShortName string
	Color     string
	LightText bool
}

func New(id, name string, spec Spec, r Rand) (model.CategoryDefinition, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.CategoryDefinition{}, errors.New("category name is empty")
	}
	def := model.CategoryDefinition{
		ID:        id,
		Name:      name,
		ShortName: strings.TrimSpace(spec.ShortName),
		LightText: spec.LightText,
	}
	if def.ShortName == "" {
		def.ShortName = DeriveShortName(name)
	}
	if strings.TrimSpace(spec.Color) == "" {
		def.Color = DeriveColor(r)
	} else {
		c, err := NormalizeColor(spec.Color)
		if err != nil {
			return model.CategoryDefinition{}, err
		}
		def.Color = c
	}
	return def, nil
}

// Patch lists the fields to change on an existing category; nil fields are kept.
type Patch struct {
	Name      *string
	ShortName *string
	Color     *string
	LightText *bool
}

func (p Patch) Empty() bool {
	return p.Name == nil && p.ShortName == nil && p.Color == nil && p.LightText == nil
}

func Apply(def model.CategoryDefinition, p Patch) (model.CategoryDefinition, error) {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return def, errors.New("category name is empty")
		}
		def.Name = name
	}
	if p.ShortName != nil {
		def.ShortName = strings.TrimSpace(*p.ShortName)
		if def.ShortName == "" {
			def.ShortName = DeriveShortName(def.Name)
		}
	}
	if p.Color != nil {
		c, err := NormalizeColor(*p.Color)
		if err != nil {
			return def, err
		}
		def.Color = c
	}
	if p.LightText != nil {
		def.LightText = *p.LightText
	}
	return def, nil
}
