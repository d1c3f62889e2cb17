package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/ajitpratap0/metactx/pkg/json"
	"github.com/ajitpratap0/metactx/pkg/omerrors"
)

// maxBody bounds request and error bodies.
const maxBody = 8 << 20

// ErrorResponse is the body of every failed call.
type ErrorResponse struct {
	RelatedHTTPCode int                    `json:"relatedHTTPCode"`
	Type            omerrors.ErrorType     `json:"type"`
	Message         string                 `json:"message"`
	Details         map[string]interface{} `json:"details,omitempty"`
}

// StatusFor maps an error to the status code the server answers with.
func StatusFor(err error) int {
	switch omerrors.TypeOf(err) {
	case omerrors.ErrorTypeInvalidParameter:
		return http.StatusBadRequest
	case omerrors.ErrorTypeNotFound:
		return http.StatusNotFound
	case omerrors.ErrorTypeUserNotAuthorized:
		return http.StatusForbidden
	case omerrors.ErrorTypeRateLimit:
		return http.StatusTooManyRequests
	case omerrors.ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// TypeForStatus maps a status code received by the client back to an
// error type.
func TypeForStatus(code int) omerrors.ErrorType {
	switch {
	case code == http.StatusBadRequest, code == http.StatusNotFound, code == http.StatusConflict:
		return omerrors.ErrorTypeInvalidParameter
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return omerrors.ErrorTypeUserNotAuthorized
	case code == http.StatusTooManyRequests:
		return omerrors.ErrorTypeRateLimit
	default:
		return omerrors.ErrorTypePropertyServer
	}
}

// NewErrorResponse builds the envelope for err.
func NewErrorResponse(err error) ErrorResponse {
	resp := ErrorResponse{
		RelatedHTTPCode: StatusFor(err),
		Type:            omerrors.TypeOf(err),
		Message:         err.Error(),
	}
	var e *omerrors.Error
	if errors.As(err, &e) {
		resp.Message = e.Message
		resp.Details = e.Details
	}
	return resp
}

// DecodeError rebuilds an error from a failed response. The type follows
// the status code; message and details come from the body when it is an
// ErrorResponse.
func DecodeError(code int, body []byte) error {
	e := omerrors.New(TypeForStatus(code), http.StatusText(code))
	var resp ErrorResponse
	if err := json.Unmarshal(body, &resp); err == nil && resp.Message != "" {
		e.Message = resp.Message
		for k, v := range resp.Details {
			e.WithDetail(k, v)
		}
	}
	return e.WithDetail("status", code)
}

// WriteJSON writes v with the given status. v is encoded before the
// header is written; a value that cannot be encoded becomes a 500 envelope.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	buf, err := json.MarshalToBuffer(v)
	if err != nil {
		buf, _ = json.MarshalToBuffer(ErrorResponse{
			RelatedHTTPCode: http.StatusInternalServerError,
			Type:            omerrors.ErrorTypeInternal,
			Message:         "response could not be encoded: " + err.Error(),
		})
		status = http.StatusInternalServerError
	}
	defer json.PutBuffer(buf)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// WriteError writes the envelope for err.
func WriteError(w http.ResponseWriter, err error) {
	resp := NewErrorResponse(err)
	WriteJSON(w, resp.RelatedHTTPCode, resp)
}

// ReadJSON decodes a request body into v. An empty body leaves v
// unchanged.
func ReadJSON(r *http.Request, v interface{}) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		return omerrors.Wrap(err, omerrors.ErrorTypeConnection, "failed to read request body")
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return omerrors.InvalidParameter("body", "malformed request body: "+err.Error())
	}
	return nil
}

// ReadBody reads at most the protocol limit from rc.
func ReadBody(rc io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(rc, maxBody))
}
