package helper

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type nameForm struct {
	Name string `validate:"required,min=3"`
}

func TestJsonValidatorErrorFieldMap(t *testing.T) {
	app := fiber.New()
	v := validator.New()
	app.Get("/check", func(c *fiber.Ctx) error {
		return JsonValidatorError(c, v.Struct(&nameForm{}))
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/check", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	var out ErrorResponse
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.ErrorCode != "VALIDATION_ERROR" {
		t.Errorf("error_code = %q, want VALIDATION_ERROR", out.ErrorCode)
	}
	if len(out.Errors["name"]) == 0 {
		t.Errorf("field errors missing name entry: %v", out.Errors)
	}
}

func TestJsonValidatorErrorPlainError(t *testing.T) {
	app := fiber.New()
	app.Get("/check", func(c *fiber.Ctx) error {
		return JsonValidatorError(c, errors.New("bad payload"))
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/check", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}
