package domain

import "net/http"

// ResultCode classifies the outcome of a request
type ResultCode string

const (
	CodeSuccess      ResultCode = "success"
	CodeBadRequest   ResultCode = "badRequest"
	CodeNotFound     ResultCode = "notFound"
	CodeUnknownError ResultCode = "unknownError"
)

// ResultMeta describes the outcome carried next to a payload
type ResultMeta struct {
	Code       ResultCode `json:"code"`
	Status     int        `json:"status"`
	Successful bool       `json:"successful"`
	Message    string     `json:"message,omitempty"`
}

// Result is the envelope every API response is wrapped in
type Result struct {
	Meta    ResultMeta `json:"meta"`
	Payload any        `json:"payload"`
}

var defaultMeta = map[ResultCode]ResultMeta{
	CodeSuccess: {
		Code:       CodeSuccess,
		Status:     http.StatusOK,
		Successful: true,
	},
	CodeBadRequest: {
		Code:    CodeBadRequest,
		Status:  http.StatusBadRequest,
		Message: "Your conductor might be drunk.",
	},
	CodeNotFound: {
		Code:    CodeNotFound,
		Status:  http.StatusNotFound,
		Message: "That stop is not on the map.",
	},
	CodeUnknownError: {
		Code:    CodeUnknownError,
		Status:  http.StatusInternalServerError,
		Message: "A train has crashed into the server.",
	},
}

// NewResult wraps payload with the default meta for code. A non-empty
// message replaces the default one.
func NewResult(payload any, code ResultCode, message string) Result {
	meta, ok := defaultMeta[code]
	if !ok {
		meta = defaultMeta[CodeUnknownError]
	}
	if message != "" {
		meta.Message = message
	}
	return Result{Meta: meta, Payload: payload}
}
