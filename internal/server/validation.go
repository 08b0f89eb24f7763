package server

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var validatorOnce sync.Once

func registerValidators() {
	validatorOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = engine.RegisterValidation("sessionid", func(fl validator.FieldLevel) bool {
			return validSessionID(fl.Field().String())
		})
	})
}

// validSessionID rejects ids that would be unreadable in logs or URLs.
func validSessionID(id string) bool {
	if id == "" || strings.TrimSpace(id) != id {
		return false
	}
	for _, r := range id {
		if unicode.IsControl(r) || r == '/' {
			return false
		}
	}
	return true
}

// decodePayload unmarshals data into dest and validates it with the same
// engine gin uses for request binding.
func decodePayload(data json.RawMessage, dest any) error {
	if len(data) == 0 {
		return errors.New("missing data")
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return err
	}
	return binding.Validator.ValidateStruct(dest)
}
