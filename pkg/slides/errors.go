package slides

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/itchyny/gojq"
	"google.golang.org/genai"
)

// ErrNothingToExport is wrapped by the ExportError returned for an empty
// slide list.
var ErrNothingToExport = errors.New("slides: nothing to export")

// RequestError is a failure of the remote generation call or of its stream.
type RequestError struct {
	Err error
}

// NewRequestError wraps err unless it already is a RequestError.
func NewRequestError(err error) error {
	if err == nil {
		return nil
	}
	var re *RequestError
	if errors.As(err, &re) {
		return err
	}
	return &RequestError{Err: err}
}

func (e *RequestError) Error() string {
	return "slides: request: " + e.Err.Error()
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Message returns the message of the structured error payload carried by the
// underlying error, or the raw error text when there is none. A Gemini API
// error contributes its own message, which may itself hold a JSON payload.
func (e *RequestError) Message() string {
	if msg := apiErrorMessage(e.Err); msg != "" {
		return payloadMessage(msg)
	}
	return payloadMessage(e.Err.Error())
}

func apiErrorMessage(err error) string {
	var ae genai.APIError
	if errors.As(err, &ae) {
		return ae.Message
	}
	var aep *genai.APIError
	if errors.As(err, &aep) && aep != nil {
		return aep.Message
	}
	return ""
}

// Display is the text shown to the user.
func (e *RequestError) Display() string {
	return "Something went wrong: " + e.Message()
}

// ExportError is a failure to package slides.
type ExportError struct {
	Err error
}

func (e *ExportError) Error() string {
	return "slides: export: " + e.Err.Error()
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// Display is the text shown to the user. The cause is only logged.
func (e *ExportError) Display() string {
	return "Export failed, please try again."
}

var payloadQuery = func() *gojq.Code {
	q, err := gojq.Parse(`(.error.message? // .message? // .error?) | select(type == "string" and . != "")`)
	if err != nil {
		panic(err)
	}
	code, err := gojq.Compile(q)
	if err != nil {
		panic(err)
	}
	return code
}()

// payloadMessage extracts the message of a JSON error payload embedded in
// raw, e.g. `got status 400: {"error":{"code":400,"message":"..."}}`.
func payloadMessage(raw string) string {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end < start {
		return raw
	}
	var v any
	if err := json.Unmarshal([]byte(raw[start:end+1]), &v); err != nil {
		return raw
	}
	iter := payloadQuery.Run(v)
	for {
		r, ok := iter.Next()
		if !ok {
			return raw
		}
		if _, isErr := r.(error); isErr {
			return raw
		}
		if s, ok := r.(string); ok {
			return s
		}
	}
}
