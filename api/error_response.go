package api

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
)

var (
	// api errors
	ErrInvalidParams = errors.New("invalid parameters")
	ErrInvalidKind   = errors.New("invalid icon kind")
	ErrIconFetch     = errors.New("cannot fetch icon")
)

// ErrorField describes a single invalid request field.
type ErrorField struct {
	FieldName    string `json:"field_name"`
	ErrorMessage string `json:"error_message"`
}

type ErrorResponse struct {
	Error  string       `json:"error"`
	Fields []ErrorField `json:"fields,omitempty"`
}

func NewErrorResponse(err error, fields ...ErrorField) ErrorResponse {
	return ErrorResponse{Error: err.Error(), Fields: fields}
}

// messages for the validation tags used by the requests
var tagMessages = map[string]string{
	"required": "this field is required",
	"min":      "value is too short",
	"max":      "value is too long",
	"oneof":    "must be one of the allowed values",
}

// ExtractErrorFields turns validation errors into per-field messages.
// Any other error, e.g. malformed JSON, produces no fields.
func ExtractErrorFields(err error) []ErrorField {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	fields := make([]ErrorField, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := tagMessages[fe.Tag()]
		if !ok {
			msg = "invalid input"
		}

		fields = append(fields, ErrorField{
			FieldName:    fe.Field(),
			ErrorMessage: msg,
		})
	}

	return fields
}

func extractErrorFromBuffer(buf *bytes.Buffer) (*ErrorResponse, error) {
	var resp ErrorResponse
	if err := json.NewDecoder(buf).Decode(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
