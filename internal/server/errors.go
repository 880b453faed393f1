package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	kerrors "github.com/matzehuels/kintree/pkg/errors"
)

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Default().Error("encode response", "error", err)
	}
}

// writeError maps an error's machine code to an HTTP status and writes the
// JSON error envelope. Unknown codes become 500s.
func writeError(w http.ResponseWriter, logger *log.Logger, err error) {
	code := string(kerrors.GetCode(err))
	status := statusForCode(err, code)

	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "code", code, "error", err)
	}

	writeJSON(w, status, errorResponse{Error: errorBody{
		Code:    code,
		Message: err.Error(),
	}})
}

func statusForCode(err error, code string) int {
	switch {
	case kerrors.IsNotFound(err):
		return http.StatusNotFound
	case strings.HasPrefix(code, "INVALID"):
		return http.StatusBadRequest
	case code == string(kerrors.ErrCodeStoreConflict):
		return http.StatusConflict
	case code == string(kerrors.ErrCodeUnsupported):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// badRequest writes a 400 with the INVALID_INPUT code.
func badRequest(w http.ResponseWriter, logger *log.Logger, format string, args ...any) {
	writeError(w, logger, kerrors.New(kerrors.ErrCodeInvalidInput, format, args...))
}

func invalidQueryParam(name, value string) error {
	return kerrors.New(kerrors.ErrCodeInvalidInput, "query parameter %s: not a number: %q", name, value)
}
