package schema

import (
	"math"
	"reflect"
	"regexp"

	"github.com/utafrali/productconsole/internal/domain"
	"github.com/utafrali/productconsole/pkg/validator"
)

var skuPattern = regexp.MustCompile(`^[A-Z0-9_-]+$`)

func init() {
	validator.MustRegister("sku", func(fl validator.FieldLevel) bool {
		return skuPattern.MatchString(fl.Field().String())
	})
	validator.MustRegister("category", func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		return v == "" || domain.IsValidCategory(v)
	})
	validator.MustRegister("currency", func(fl validator.FieldLevel) bool {
		return domain.IsValidCurrency(fl.Field().String())
	})
	validator.MustRegister("integer", isInteger)
}

func isInteger(fl validator.FieldLevel) bool {
	field := fl.Field()
	switch field.Kind() {
	case reflect.Float32, reflect.Float64:
		f := field.Float()
		return !math.IsInf(f, 0) && f == math.Trunc(f)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	default:
		return false
	}
}
