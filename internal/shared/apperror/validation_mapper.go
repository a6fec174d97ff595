package apperror

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// formatFieldName mengubah nama field snake_case jadi bentuk yang enak dibaca,
// misal "end_date" -> "End Date".
func formatFieldName(s string) string {
	s = strings.ReplaceAll(s, "_", " ")

	caser := cases.Title(language.English)
	return caser.String(s)
}

// MapValidationError menerjemahkan error dari validator jadi *AppError per field.
func MapValidationError(err error) error {
	if errs, ok := err.(validator.ValidationErrors); ok {
		// Cukup error pertama saja yang dilaporkan
		e := errs[0]

		// e.Field() sudah memakai nama tag json (mis. "end_date")
		// karena RegisterTagNameFunc di-set lewat apperror.Init()
		humanReadableField := formatFieldName(e.Field())

		switch e.Tag() {
		case "required":
			// Pesannya: "End Date is required"
			return RequiredField(humanReadableField)
		default:
			// Pesannya: "End Date is invalid"
			return InvalidField(humanReadableField)
		}
	}

	return New(
		CodeInvalidInput,
		"Invalid input",
		http.StatusBadRequest,
	)
}
