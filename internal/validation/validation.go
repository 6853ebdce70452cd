package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"

	"github.com/julianstephens/tally/internal/constants"
	apperrors "github.com/julianstephens/tally/internal/errors"
	"github.com/julianstephens/tally/internal/models"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// Messages overrides the default text for "<field>.<tag>" failures.
type Messages map[string]string

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report fields by their JSON names so messages match the API vocabulary
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// Struct validates v and returns a *errors.ValidationError for the first failing field.
func Struct(v interface{}, msgs Messages) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validating %T: %w", v, err)
	}
	fe := verrs[0]
	field := fe.Field()
	if msg, ok := msgs[field+"."+fe.Tag()]; ok {
		return apperrors.NewValidation(field, msg)
	}
	return apperrors.NewValidation(field, defaultMessage(field, fe))
}

func defaultMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "hexcolor":
		return fmt.Sprintf("%s must be a hex color like %s", field, constants.DefaultHabitColor)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// Avatar checks an image chosen for upload and returns its effective MIME type.
// Both the declared type and the sniffed content must be images.
func Avatar(file models.AvatarFile) (string, error) {
	if file.Size() == 0 {
		return "", apperrors.NewValidation("avatar", "Please select an image file")
	}
	if file.Size() > constants.MaxAvatarBytes {
		return "", apperrors.NewValidation("avatar", "Image size must be less than 5MB")
	}
	if file.MimeType != "" && !strings.HasPrefix(file.MimeType, "image/") {
		return "", apperrors.NewValidation("avatar", "Please select an image file")
	}
	detected := mimetype.Detect(file.Data)
	if !strings.HasPrefix(detected.String(), "image/") {
		return "", apperrors.NewValidation("avatar", "Please select an image file")
	}
	return detected.String(), nil
}
