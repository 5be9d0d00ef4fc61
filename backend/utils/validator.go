package utils

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/gofiber/fiber/v2"
)

var (
	validate   *validator.Validate
	translator ut.Translator
	initOnce   sync.Once
)

const requiredText = "this field is required"

func initValidator() {
	validate = validator.New()
	english := en.New()
	translator, _ = ut.New(english, english).GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterTranslation("required", translator,
		func(t ut.Translator) error { return t.Add("required", requiredText, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T("required", fe.Field())
			return s
		},
	)
}

// Validator returns the shared validator instance.
func Validator() *validator.Validate {
	initOnce.Do(initValidator)
	return validate
}

// TranslateValidation maps each failing field to a readable message.
func TranslateValidation(errs validator.ValidationErrors) map[string]string {
	Validator()
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		fields[fe.Field()] = fe.Translate(translator)
	}
	return fields
}

// ValidateStruct runs struct tag validation and returns a VALIDATION_ERROR on failure.
func ValidateStruct(v interface{}) error {
	if err := Validator().Struct(v); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			return ValidationErr("validation failed", TranslateValidation(errs))
		}
		return ValidationErr(err.Error())
	}
	return nil
}

// ParseBody decodes the request body into dst and validates it.
func ParseBody(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return ValidationErr("cannot parse JSON body")
	}
	return ValidateStruct(dst)
}
