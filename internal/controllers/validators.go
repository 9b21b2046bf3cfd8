package controllers

import (
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"campus_shuttle/internal/fare"
)

var registerOnce sync.Once

// RegisterValidators adds the hhmm and weekday tags to gin's validator and
// reports fields by their json names. Safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
			_, err := time.Parse("15:04", fl.Field().String())
			return err == nil
		})
		v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
			_, ok := fare.ParseWeekday(fl.Field().String())
			return ok
		})
	})
}
