package request

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

var consoleNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 _.-]{0,62}$`)

func init() {
	validate.RegisterValidation("consolename", func(fl validator.FieldLevel) bool {
		return consoleNameRegex.MatchString(fl.Field().String())
	})
}

func Decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	return nil
}

func RequireName(s string) (string, error) {
	if s == "" {
		return "", fmt.Errorf("missing required console name")
	}
	return s, nil
}
