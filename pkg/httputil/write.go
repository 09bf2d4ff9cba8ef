package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/waveer/oauth-gateway/pkg/oautherrors"
)

type errorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError renders err as the standard OAuth error envelope
// {error, error_description}. server_error responses omit the
// description so internal detail never leaks to clients.
func WriteError(w http.ResponseWriter, err error) {
	code := oautherrors.GetCode(err)
	body := errorBody{Error: string(code)}
	if code != oautherrors.CodeServerError {
		body.ErrorDescription = oautherrors.Description(err)
	}
	WriteJSON(w, oautherrors.HTTPStatus(code), body)
}
