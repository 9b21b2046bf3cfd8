package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"campus_shuttle/internal/middleware"
	"campus_shuttle/internal/services"
)

// respondError maps a service error to its status. Unexpected errors are
// logged and reported as a generic 500.
func respondError(c *gin.Context, err error) {
	respondErrorAs(c, err, "Server Error")
}

// respondErrorAs is respondError with a custom message for the 500 case.
func respondErrorAs(c *gin.Context, err error, fallback string) {
	status, msg := http.StatusInternalServerError, fallback
	switch {
	case services.IsValidation(err), services.IsRule(err):
		status, msg = http.StatusBadRequest, err.Error()
	case services.IsNotFound(err):
		status, msg = http.StatusNotFound, err.Error()
	default:
		logrus.WithError(err).WithFields(logrus.Fields{
			"request_id": middleware.RequestIDFrom(c),
			"method":     c.Request.Method,
			"path":       c.FullPath(),
		}).Error("request failed")
	}
	c.AbortWithStatusJSON(status, middleware.ErrorBody(c, msg))
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, middleware.ErrorBody(c, msg))
}

// bindingMessage turns a binding failure into one readable sentence.
func bindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return fmt.Sprintf("%s is required", fe.Field())
		case "email":
			return fmt.Sprintf("%s must be a valid email", fe.Field())
		case "min":
			return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
		case "gt":
			return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
		case "hhmm":
			return fmt.Sprintf("%s must be a time in HH:MM", fe.Field())
		case "weekday":
			return fmt.Sprintf("%s must be a day of the week", fe.Field())
		}
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
	return "Invalid request body"
}

func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, bindingMessage(err))
		return false
	}
	return true
}

// pathID parses a positive numeric path parameter.
func pathID(c *gin.Context, name, label string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "Invalid "+label+" ID")
		return 0, false
	}
	return uint(id), true
}
