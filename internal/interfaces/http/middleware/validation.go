package middleware

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/vertinimas/portal/internal/interfaces/http/dto"
)

// SetupValidator makes validation errors report JSON (or form) field names
func SetupValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(fieldName)
	}
}

func fieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
	}
	return name
}

// ValidationDetails converts binding errors into localized per-field details.
// It returns nil when err is not a validator error.
func ValidationDetails(c *gin.Context, err error) []dto.ValidationDetail {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	details := make([]dto.ValidationDetail, 0, len(verrs))
	for _, e := range verrs {
		details = append(details, dto.ValidationDetail{
			Field:   e.Field(),
			Message: validationMessage(c, e),
		})
	}
	return details
}

func validationMessage(c *gin.Context, e validator.FieldError) string {
	key := "validation." + e.Tag()
	var args []any
	switch e.Tag() {
	case "min", "max", "len", "gte", "lte", "datetime":
		args = []any{e.Param()}
	case "oneof":
		args = []any{strings.ReplaceAll(e.Param(), " ", ", ")}
	}
	if msg, ok := Translate(c, key, args...); ok {
		return msg
	}
	if msg, ok := Translate(c, "validation.default"); ok {
		return msg
	}
	return e.Error()
}
