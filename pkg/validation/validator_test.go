package validation

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

type registerForm struct {
	Account  string `json:"account" validate:"required,uname"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,pwd"`
	Intro    string `form:"introduction" validate:"intro"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	Register(v)
	return v
}

func TestToDetails_FieldErrors(t *testing.T) {
	err := newValidator().Struct(registerForm{Account: "", Email: "nope", Password: "123"})

	details := ToDetails(err)
	assert.Equal(t, "is required", details["account"])
	assert.Equal(t, "must be a valid email", details["email"])
	assert.Equal(t, "must be 4 to 64 characters long", details["password"])
}

func TestToDetails_FormTagAndAlias(t *testing.T) {
	long := make([]byte, 161)
	for i := range long {
		long[i] = 'x'
	}
	err := newValidator().Struct(registerForm{Account: "a", Email: "a@b.co", Password: "1234", Intro: string(long)})

	assert.Equal(t, map[string]string{"introduction": "must be at most 160 characters long"}, ToDetails(err))
}

func TestToDetails_InvalidJSON(t *testing.T) {
	var v map[string]any
	err := json.Unmarshal([]byte("{"), &v)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))
	assert.Nil(t, ToDetails(nil))
}
