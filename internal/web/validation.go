package web

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// detailItem is one entry of a 422 response: {"detail": [{"loc": [...], "msg": "...", "type": "..."}]}.
type detailItem struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

var registerOnce sync.Once

// registerFieldNames makes validation errors report wire names (page_size) rather
// than Go field names (PageSize).
func registerFieldNames() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
	})
}

// validationDetails turns a binding error into 422 detail entries under loc.
func validationDetails(loc string, err error) []detailItem {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []detailItem{{Loc: []string{loc}, Msg: err.Error(), Type: "value_error"}}
	}
	out := make([]detailItem, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, detailItem{
			Loc:  []string{loc, fe.Field()},
			Msg:  fieldMessage(fe),
			Type: "value_error." + fe.Tag(),
		})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "field required"
	case "min":
		if isString {
			return fmt.Sprintf("ensure this value has at least %s characters", fe.Param())
		}
		return fmt.Sprintf("ensure this value is greater than or equal to %s", fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("ensure this value has at most %s characters", fe.Param())
		}
		return fmt.Sprintf("ensure this value is less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("value is not a valid enumeration member; permitted: '%s'", strings.Join(strings.Fields(fe.Param()), "', '"))
	default:
		return fmt.Sprintf("failed on the %q rule", fe.Tag())
	}
}
