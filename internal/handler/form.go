package handler

// FORM DECODING AND VALIDATION:
// Every POSTed form is decoded into a typed struct and checked with
// go-playground/validator struct tags before any service call. The rules
// live on the struct, next to the fields they constrain, instead of being
// scattered through handler bodies as if-statements.

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is shared by all handlers. A validator.Validate caches parsed
// struct tags, so one instance for the whole package is both safe and fast.
var validate = validator.New()

type registerForm struct {
	Name     string `validate:"required,max=100"`
	Email    string `validate:"required,email,max=254"`
	Password string `validate:"required,min=8,max=72"`
}

type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type postForm struct {
	Title    string `validate:"required,max=200"`
	Subtitle string `validate:"required,max=200"`
	ImageURL string `validate:"omitempty,url"`
	Body     string `validate:"required"`
}

type commentForm struct {
	Body string `validate:"required"`
}

// formValue returns the trimmed form field. Leading/trailing whitespace in
// a title or email is never meaningful and "   " must not pass "required".
func formValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.PostFormValue(key))
}

// validationMessage turns the FIRST validator error into a sentence fit for
// a flash message. One problem at a time is enough for a small site's forms.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Please check the form and try again."
	}

	e := verrs[0]
	field := strings.ToLower(e.Field())
	switch e.Tag() {
	case "required":
		return "The " + field + " field is required."
	case "email":
		return "Please enter a valid email address."
	case "min":
		return "The " + field + " field must be at least " + e.Param() + " characters."
	case "max":
		return "The " + field + " field must be at most " + e.Param() + " characters."
	case "url":
		return "The " + field + " field must be a valid URL."
	default:
		return "The " + field + " field is invalid."
	}
}
