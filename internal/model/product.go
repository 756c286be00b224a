package model

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ProductSpecs describes a product submitted for tariff classification.
// It is treated as immutable once received.
type ProductSpecs struct {
	Name               string             `json:"name" validate:"notblank"`
	Description        string             `json:"description" validate:"notblank"`
	Materials          map[string]float64 `json:"materials" validate:"dive,keys,notblank,endkeys,gte=0,lte=1"`
	Value              float64            `json:"value" validate:"gte=0"`
	OriginCountry      string             `json:"origin_country" validate:"iso2"`
	DestinationCountry string             `json:"destination_country" validate:"iso2"`
	IntendedUse        string             `json:"intended_use" validate:"notblank"`
}

// MaterialNames returns material names in sorted order.
func (p ProductSpecs) MaterialNames() []string {
	names := make([]string, 0, len(p.Materials))
	for name := range p.Materials {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func productValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		v.RegisterValidation("iso2", func(fl validator.FieldLevel) bool {
			s := strings.TrimSpace(fl.Field().String())
			if len(s) != 2 {
				return false
			}
			for _, r := range s {
				if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
					return false
				}
			}
			return true
		})
		validate = v
	})
	return validate
}

// Validate checks required fields and value ranges.
// Failures wrap ErrInvalidInput and name every offending field.
func (p ProductSpecs) Validate() error {
	return ValidateStruct(p)
}

// ValidateStruct runs the shared validator (including the notblank and iso2
// tags) over v. Failures wrap ErrInvalidInput.
func ValidateStruct(v any) error {
	err := productValidator().Struct(v)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(msgs, "; "))
}
