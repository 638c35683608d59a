package server

import (
	"encoding/json"
	"net/http"

	lenserr "github.com/matzehuels/lens/pkg/errors"
)

// maxBodyBytes bounds request bodies; every request body is a small JSON object.
const maxBodyBytes = 1 << 20

type errResponse struct {
	Error errDetail `json:"error"`
}

type errDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func errorBody(code, msg string) errResponse {
	return errResponse{Error: errDetail{Code: code, Message: msg}}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError responds with the status and code carried by err. Errors
// without a code are reported as INTERNAL_ERROR without leaking details.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := lenserr.HTTPStatus(err)
	code := lenserr.GetCode(err)
	msg := lenserr.UserMessage(err)
	if code == "" {
		code = lenserr.ErrCodeInternal
		msg = "internal error"
	}
	if status >= http.StatusInternalServerError {
		s.cfg.Logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorBody(string(code), msg))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return lenserr.Wrap(lenserr.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}
