package dto

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/baechuer/kanjo/services/account-service/internal/domain"
)

var (
	validate *validator.Validate
	trans    ut.Translator

	roleNameRe  = regexp.MustCompile(`^[a-zA-Z0-9\s]+$`)
	skillNameRe = regexp.MustCompile(`^[a-zA-Z0-9\s\-_]+$`)
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// report json field names, not Go names
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("role_name", func(fl validator.FieldLevel) bool {
		return roleNameRe.MatchString(fl.Field().String())
	})
	_ = validate.RegisterValidation("skill_name", func(fl validator.FieldLevel) bool {
		return skillNameRe.MatchString(fl.Field().String())
	})

	english := en.New()
	trans, _ = ut.New(english, english).GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, trans)

	registerMessage("role_name", "{0} can only contain letters, numbers and spaces")
	registerMessage("skill_name", "{0} can only contain letters, numbers, spaces, hyphens and underscores")
}

func registerMessage(tag, text string) {
	_ = validate.RegisterTranslation(tag, trans,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(tag, fe.Field())
			return msg
		},
	)
}

// Validate runs struct tags on req and converts the first failure into a
// domain validation error. Missing required fields are missing_field and a
// short password is weak_password; everything else is invalid_field.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.ErrInternal(err)
	}

	fe := verrs[0]
	switch {
	case fe.Tag() == "required":
		return domain.ErrMissingField(fe.Field())
	case fe.Tag() == "min" && strings.Contains(strings.ToLower(fe.Field()), "password"):
		return domain.ErrWeakPassword(fe.Translate(trans))
	default:
		return domain.ErrInvalidField(fe.Field(), fe.Translate(trans))
	}
}
