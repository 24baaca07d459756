package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var emailRx = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Usernames are lowercase letters, digits, underscore and dot, 3-30 chars.
var usernameRx = regexp.MustCompile(`^[a-z0-9_.]{3,30}$`)

var (
	once sync.Once
	v    *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		// Report JSON field names instead of Go field names.
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
	})
	return v
}

// Struct checks the `validate` tags of s and describes the first violation.
func Struct(s any) error {
	err := engine().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", fe.Field())
	case "max":
		return fmt.Errorf("%s exceeds %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Errorf("%s must have at least %s items", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Errorf("%s must be one of [%s]", fe.Field(), fe.Param())
	default:
		return fmt.Errorf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

func Username(v string) error {
	if v == "" {
		return fmt.Errorf("username is required")
	}
	if !usernameRx.MatchString(v) {
		return fmt.Errorf("username must match %s", usernameRx.String())
	}
	return nil
}

func Email(v string) error {
	if v == "" {
		return fmt.Errorf("email is required")
	}
	if len(v) > 320 || !emailRx.MatchString(v) {
		return fmt.Errorf("invalid email")
	}
	return nil
}

// NonBlank rejects empty and whitespace-only values.
func NonBlank(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

func MaxLen(field, v string, limit int) error {
	if len(v) > limit {
		return fmt.Errorf("%s exceeds %d characters", field, limit)
	}
	return nil
}

// -------- Request specific helpers ----------

func CreateUser(username, email, firstName, lastName string) error {
	if err := Username(username); err != nil {
		return err
	}
	if err := Email(email); err != nil {
		return err
	}
	if err := MaxLen("firstName", firstName, 150); err != nil {
		return err
	}
	return MaxLen("lastName", lastName, 150)
}

// MessageBody requires 1..limit bytes of valid UTF-8 that is not blank.
func MessageBody(body string, limit int) error {
	if err := NonBlank("body", body); err != nil {
		return err
	}
	if !utf8.ValidString(body) {
		return fmt.Errorf("body must be valid UTF-8")
	}
	return MaxLen("body", body, limit)
}

func PostContent(content string) error {
	if err := NonBlank("content", content); err != nil {
		return err
	}
	return MaxLen("content", content, 5000)
}

func Bio(bio string) error {
	return MaxLen("bio", bio, 2000)
}
