package resume

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"resume-parser/pkg/models"
)

// SectionKeyPattern restricts custom section keys to identifier-like tokens
var SectionKeyPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]{0,63}$`)

var schemaValidator = newSchemaValidator()

func newSchemaValidator() *validator.Validate {
	v := validator.New()
	// report JSON field names, e.g. workExperience[0].id
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("section_key", func(fl validator.FieldLevel) bool {
		return SectionKeyPattern.MatchString(fl.Field().String())
	})
	return v
}

// Decode converts a completion result into ResumeData, fills defaults and validates it.
// Any failure is reported as ErrSchemaValidation; no partial result is returned.
func Decode(raw map[string]interface{}) (*models.ResumeData, error) {
	info, ok := raw["personalInfo"]
	if !ok {
		return nil, fmt.Errorf("%w: personalInfo is required", ErrSchemaValidation)
	}
	if _, isObject := info.(map[string]interface{}); !isObject {
		return nil, fmt.Errorf("%w: personalInfo must be an object", ErrSchemaValidation)
	}

	coerceIDs(raw)

	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaValidation, err)
	}

	var resume models.ResumeData
	if err := json.Unmarshal(data, &resume); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w: field %s: expected %s, got %s", ErrSchemaValidation, typeErr.Field, typeErr.Type, typeErr.Value)
		}
		return nil, fmt.Errorf("%w: %v", ErrSchemaValidation, err)
	}

	Normalize(&resume)

	if err := Validate(&resume); err != nil {
		return nil, err
	}

	return &resume, nil
}

// itemListFields are the top-level lists whose entries carry a numeric id
var itemListFields = []string{"workExperience", "education", "personalProjects"}

// coerceIDs rewrites integral ids sent as strings, e.g. "3" or "3.0", to numbers.
// Anything else is left for the decoder to reject.
func coerceIDs(raw map[string]interface{}) {
	for _, field := range itemListFields {
		coerceItemIDs(raw[field])
	}

	sections, _ := raw["customSections"].(map[string]interface{})
	for _, section := range sections {
		if fields, ok := section.(map[string]interface{}); ok {
			coerceItemIDs(fields["items"])
		}
	}
}

func coerceItemIDs(list interface{}) {
	items, _ := list.([]interface{})
	for _, item := range items {
		fields, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		if id, ok := integralID(fields["id"]); ok {
			fields["id"] = id
		}
	}
}

func integralID(value interface{}) (int, bool) {
	s, ok := value.(string)
	if !ok {
		return 0, false
	}
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// Validate checks resume against the schema rules
func Validate(resume *models.ResumeData) error {
	err := schemaValidator.Struct(resume)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("%w: %v", ErrSchemaValidation, err)
	}

	problems := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		problems = append(problems, describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrSchemaValidation, strings.Join(problems, "; "))
}

func describe(fe validator.FieldError) string {
	// Namespace starts with the struct name
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fmt.Sprint(fe.Value()))
	case "gte":
		return fmt.Sprintf("%s must be >= %s", field, fe.Param())
	case "section_key":
		return fmt.Sprintf("%s is not a valid section key", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// Normalize replaces nil lists and maps with empty ones and numbers items whose id
// is zero, counting from 1 within each list
func Normalize(resume *models.ResumeData) {
	if resume.WorkExperience == nil {
		resume.WorkExperience = []models.Experience{}
	}
	for i := range resume.WorkExperience {
		item := &resume.WorkExperience[i]
		if item.ID == 0 {
			item.ID = i + 1
		}
		item.Description = nonNil(item.Description)
	}

	if resume.Education == nil {
		resume.Education = []models.Education{}
	}
	for i := range resume.Education {
		if resume.Education[i].ID == 0 {
			resume.Education[i].ID = i + 1
		}
	}

	if resume.PersonalProjects == nil {
		resume.PersonalProjects = []models.Project{}
	}
	for i := range resume.PersonalProjects {
		item := &resume.PersonalProjects[i]
		if item.ID == 0 {
			item.ID = i + 1
		}
		item.Description = nonNil(item.Description)
	}

	resume.Additional.TechnicalSkills = nonNil(resume.Additional.TechnicalSkills)
	resume.Additional.Languages = nonNil(resume.Additional.Languages)
	resume.Additional.CertificationsTraining = nonNil(resume.Additional.CertificationsTraining)
	resume.Additional.Awards = nonNil(resume.Additional.Awards)

	if resume.SectionMeta == nil {
		resume.SectionMeta = []models.SectionMeta{}
	}
	for i := range resume.SectionMeta {
		if resume.SectionMeta[i].ID == "" {
			resume.SectionMeta[i].ID = resume.SectionMeta[i].Key
		}
	}

	if resume.CustomSections == nil {
		resume.CustomSections = map[string]models.CustomSection{}
	}
	for key, section := range resume.CustomSections {
		for i := range section.Items {
			if section.Items[i].ID == 0 {
				section.Items[i].ID = i + 1
			}
			section.Items[i].Description = nonNil(section.Items[i].Description)
		}
		resume.CustomSections[key] = section
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
