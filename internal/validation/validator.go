package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	objectIDTag  = "objectid"
	objectIDText = "{0} must be a valid id"

	requiredText = "{0} is required"
)

// Enum is a custom validation tag accepting exactly the listed values.
type Enum struct {
	Tag    string
	Values []string
}

// Validator implements echo.Validator on top of go-playground/validator with
// English messages keyed by JSON field names.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func New(enums ...Enum) *Validator {
	locale := en.New()
	translator, _ := ut.New(locale, locale).GetTranslator("en")
	validate := validator.New()
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v := &Validator{validate: validate, translator: translator}

	_ = validate.RegisterValidation(objectIDTag, objectIDValidation)
	v.registerTranslation(objectIDTag, objectIDText, false)
	v.registerTranslation("required", requiredText, true)
	v.registerTranslation("required_with", requiredText, true)

	for _, e := range enums {
		v.registerEnum(e)
	}
	return v
}

func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// Messages renders validation errors as {field: message}.
func (v *Validator) Messages(errs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(errs))
	for _, fe := range errs {
		out[fe.Field()] = fe.Translate(v.translator)
	}
	return out
}

func (v *Validator) registerEnum(e Enum) {
	allowed := make(map[string]bool, len(e.Values))
	for _, val := range e.Values {
		allowed[val] = true
	}
	_ = v.validate.RegisterValidation(e.Tag, func(fl validator.FieldLevel) bool {
		return allowed[fl.Field().String()]
	})
	text := fmt.Sprintf("{0} must be one of: %s", strings.Join(e.Values, ", "))
	v.registerTranslation(e.Tag, text, false)
}

func (v *Validator) registerTranslation(tag, text string, override bool) {
	_ = v.validate.RegisterTranslation(
		tag, v.translator,
		func(t ut.Translator) error { return t.Add(tag, text, override) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// objectIDValidation accepts 24-character hex strings and slices of them.
func objectIDValidation(fl validator.FieldLevel) bool {
	field := fl.Field()
	switch field.Kind() {
	case reflect.String:
		return primitive.IsValidObjectID(field.String())
	case reflect.Slice:
		for i := 0; i < field.Len(); i++ {
			if !primitive.IsValidObjectID(field.Index(i).String()) {
				return false
			}
		}
		return true
	}
	return false
}
