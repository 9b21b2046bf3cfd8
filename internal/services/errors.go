package services

import "errors"

// ValidationError is malformed or missing input.
type ValidationError struct {
	Msg string
}

func (e ValidationError) Error() string {
	if e.Msg == "" {
		return "validation error"
	}
	return e.Msg
}

// RuleError is well-formed input that breaks a domain rule: balance, stop
// order, a full shuttle, a duplicate name.
type RuleError struct {
	Msg string
	Err error
}

func (e RuleError) Error() string { return e.Msg }

func (e RuleError) Unwrap() error { return e.Err }

// NotFoundError covers records that are absent or belong to another university.
type NotFoundError struct {
	Resource string
	Msg      string
}

func (e NotFoundError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Resource == "" {
		return "not found"
	}
	return e.Resource + " not found"
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsRule(err error) bool {
	var target RuleError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}
