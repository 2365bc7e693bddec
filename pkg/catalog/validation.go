package catalog

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.ToLower(f.Name)
	})
	// decimal.Decimal is a struct; compare it as a number for gte/lte tags
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

func (s *service) validateCreate(req CreateProductRequest) error {
	fields := structErrors(req)
	s.validateFiles(req.Files, fields)
	return asValidationError(fields)
}

func (s *service) validateUpdate(req UpdateProductRequest) error {
	fields := structErrors(req)
	if req.ID == uuid.Nil {
		fields["id"] = "is required"
	}
	s.validateFiles(req.Files, fields)
	return asValidationError(fields)
}

func (s *service) validateFiles(files []File, fields map[string]string) {
	if s.policy.MaxFiles > 0 && len(files) > s.policy.MaxFiles {
		fields["images"] = fmt.Sprintf("at most %d files allowed", s.policy.MaxFiles)
		return
	}

	for i, f := range files {
		name := fmt.Sprintf("images[%d]", i)
		switch {
		case len(f.Data) == 0:
			fields[name] = "file is empty"
		case s.policy.MaxFileBytes > 0 && int64(len(f.Data)) > s.policy.MaxFileBytes:
			fields[name] = fmt.Sprintf("file exceeds %d bytes", s.policy.MaxFileBytes)
		case s.policy.ContentTypePrefix != "" && !strings.HasPrefix(strings.ToLower(f.ContentType), s.policy.ContentTypePrefix):
			fields[name] = fmt.Sprintf("content type %q not allowed", f.ContentType)
		}
	}
}

func structErrors(req interface{}) map[string]string {
	fields := make(map[string]string)

	err := validate.Struct(req)
	if err == nil {
		return fields
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		fields["request"] = err.Error()
		return fields
	}
	for _, fe := range verrs {
		fields[fe.Field()] = describe(fe)
	}
	return fields
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func asValidationError(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}
