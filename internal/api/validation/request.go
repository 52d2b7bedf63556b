package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// ProcessIDPattern matches ids issued for background parse tasks: parse_ followed by 32 hex chars
var ProcessIDPattern = regexp.MustCompile(`^parse_[a-f0-9]{32}$`)

// ValidateProcessID validates that the process ID follows the expected format
func ValidateProcessID(fl validator.FieldLevel) bool {
	return ProcessIDPattern.MatchString(fl.Field().String())
}

// FilenamePattern rejects path separators and control characters in upload names
var FilenamePattern = regexp.MustCompile(`^[^/\\\x00-\x1f]{1,255}$`)

// ValidateFilename ensures an upload name is a bare file name
func ValidateFilename(fl validator.FieldLevel) bool {
	return FilenamePattern.MatchString(fl.Field().String())
}

// RegisterRequestValidators registers all request-level custom validators
func RegisterRequestValidators(v *validator.Validate) {
	v.RegisterValidation("process_id", ValidateProcessID)
	v.RegisterValidation("upload_filename", ValidateFilename)
}
