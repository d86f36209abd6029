package usecase

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"account_backend/internal/feature/users/domain"
)

// minPasswordLength is the minimum length of a new password.
const minPasswordLength = 8

// maxPasswordBytes is bcrypt's input limit. It counts bytes, not characters.
const maxPasswordBytes = 72

var validate = validator.New()

type fieldRule struct {
	field string
	value string
	tag   string
}

// checkFields validates each value against its tag and reports the first failure.
func checkFields(rules ...fieldRule) error {
	for _, r := range rules {
		err := validate.Var(r.value, r.tag)
		if err == nil {
			continue
		}
		reason := "is invalid"
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			reason = fmt.Sprintf("failed on the '%s' rule", verrs[0].Tag())
		}
		return &domain.ValidationError{Field: r.field, Reason: reason}
	}
	return nil
}

func validateCreateInput(in CreateUserInput) error {
	if err := checkFields(
		fieldRule{domain.FieldUsername, in.Username, "required,max=64"},
		fieldRule{domain.FieldEmail, in.Email, "required,email,max=255"},
		fieldRule{domain.FieldMobile, in.Mobile, "max=32"},
		fieldRule{domain.FieldPassword, in.Password, "required"},
	); err != nil {
		return err
	}
	return checkPasswordBytes(domain.FieldPassword, in.Password)
}

func validateNewPassword(password string) error {
	if password == "" {
		return &domain.ValidationError{Field: "desired_password", Reason: "new password not provided"}
	}
	if len(password) < minPasswordLength {
		return &domain.ValidationError{
			Field:  "desired_password",
			Reason: fmt.Sprintf("must be at least %d characters long", minPasswordLength),
		}
	}
	return checkPasswordBytes("desired_password", password)
}

func checkPasswordBytes(field, password string) error {
	if len(password) > maxPasswordBytes {
		return &domain.ValidationError{
			Field:  field,
			Reason: fmt.Sprintf("must be at most %d bytes long", maxPasswordBytes),
		}
	}
	return nil
}
