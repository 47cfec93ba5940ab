package service

import (
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// InitValidator builds the shared validator and registers the custom rules.
// Must run once before any request validation happens.
func InitValidator() {
	once.Do(func() {
		validate = validator.New()
		validate.RegisterValidation("alphanum_underscore", usernameCharset)
	})
}

// Letters, digits and underscore only; the first rune must be a letter.
func usernameCharset(fl validator.FieldLevel) bool {
	for i, char := range fl.Field().String() {
		if i == 0 && !unicode.IsLetter(char) {
			return false
		}
		if !unicode.IsLetter(char) && !unicode.IsDigit(char) && char != '_' {
			return false
		}
	}
	return true
}
