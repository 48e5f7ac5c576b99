package validator

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var lock = &sync.Mutex{}
var validate *validator.Validate

func getValidator() *validator.Validate {
	if validate == nil {
		lock.Lock()
		defer lock.Unlock()
		if validate == nil {
			v := validator.New(validator.WithRequiredStructEnabled())
			// report fields by their json names so messages match request bodies
			v.RegisterTagNameFunc(func(f reflect.StructField) string {
				name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
				if name == "-" {
					return ""
				}
				return name
			})
			validate = v
		}
	}
	return validate
}

func ValidateStruct(s interface{}) error {
	return getValidator().Struct(s)
}

// TranslateError maps each failing field to a short message. Errors that are
// not validation errors are reported under "_".
func TranslateError(err error) map[string]string {
	errs := make(map[string]string)
	if err == nil {
		return errs
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs["_"] = err.Error()
		return errs
	}
	for _, e := range verrs {
		msg := "failed on " + e.Tag()
		if e.Param() != "" {
			msg += "=" + e.Param()
		}
		errs[e.Field()] = msg
	}
	return errs
}
