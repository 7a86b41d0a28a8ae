// internal/utils/validator.go
package utils

import (
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/sapmusicgroup/sap-backend/internal/models"
)

var validate *validator.Validate

var (
	isrcPattern       = regexp.MustCompile(`(?i)^[A-Z]{2}[A-Z0-9]{3}\d{7}$`)
	upcPattern        = regexp.MustCompile(`^\d{12,13}$`)
	ipiPattern        = regexp.MustCompile(`^\d{9}$`)
	artworkURLPattern = regexp.MustCompile(`^(https?://)?([\da-z.-]+)\.([a-z.]{2,6})([/\w .-]*)*/?$`)
)

// splitTolerance absorbs float rounding in percentage sums.
const splitTolerance = 1e-9

func init() {
	validate = validator.New()
	validate.RegisterValidation("strong_password", validateStrongPassword)
	validate.RegisterValidation("isrc", matches(isrcPattern))
	validate.RegisterValidation("upc", matches(upcPattern))
	validate.RegisterValidation("ipi", matches(ipiPattern))
	validate.RegisterValidation("artwork_url", validateArtworkURL)
	validate.RegisterValidation("past_date", validatePastDate)
	validate.RegisterValidation("split_total", validateSplitTotal)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

func validateStrongPassword(fl validator.FieldLevel) bool {
	password := fl.Field().String()

	if len(password) < 8 {
		return false
	}

	var hasLetter, hasNumber bool
	for _, char := range password {
		switch {
		case unicode.IsLetter(char):
			hasLetter = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
	}

	return hasLetter && hasNumber
}

// validateArtworkURL accepts the loose form the registration form allows as
// well as data URLs produced by uploads.
func validateArtworkURL(fl validator.FieldLevel) bool {
	v := fl.Field().String()
	if artworkURLPattern.MatchString(v) {
		return true
	}
	u, err := url.Parse(v)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// validatePastDate requires a YYYY-MM-DD date strictly before today.
func validatePastDate(fl validator.FieldLevel) bool {
	t, err := time.Parse(models.DateLayout, strings.TrimSpace(fl.Field().String()))
	if err != nil {
		return false
	}
	return t.Before(time.Now().UTC().Truncate(24 * time.Hour))
}

// validateSplitTotal requires writer splits to sum to 100.
func validateSplitTotal(fl validator.FieldLevel) bool {
	writers, ok := fl.Field().Interface().([]models.Writer)
	if !ok || len(writers) == 0 {
		return false
	}
	var total float64
	for _, w := range writers {
		total += w.Split
	}
	diff := total - 100
	return diff < splitTolerance && diff > -splitTolerance
}

// Validation tags for common fields
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "oneof":
		return e.Field() + " must be one of " + e.Param()
	case "strong_password":
		return "Password must be at least 8 characters and contain a letter and a number"
	case "isrc":
		return "Invalid ISRC format."
	case "upc":
		return "UPC must be 12-13 digits."
	case "ipi":
		return "IPI must be 9 digits."
	case "artwork_url":
		return "Please enter a valid URL."
	case "past_date":
		return "Date of birth must be in the past."
	case "split_total":
		return "Total split must equal 100%."
	default:
		return e.Field() + " is invalid"
	}
}
