package adminsdk

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/meridiantours/meridian/pkg/httpx"
)

// ============================================================================
// API Error Codes
// ============================================================================

const (
	ErrorCodeInvalidRequest     = "invalid_request"
	ErrorCodeValidation         = "validation_failed"
	ErrorCodeInvalidCredentials = "invalid_credentials"
	ErrorCodeInvalidGrant       = "invalid_grant"
	ErrorCodeInvalidToken       = "invalid_token"
	ErrorCodeMFARequired        = "mfa_required"
	ErrorCodeForbidden          = "forbidden"
	ErrorCodeNotFound           = "not_found"
	ErrorCodeConflict           = "conflict"
	ErrorCodeInvalidTransition  = "invalid_transition"
	ErrorCodeServerError        = "server_error"
)

// ============================================================================
// APIError - Standard error envelope
// ============================================================================

// APIError is the error envelope every endpoint uses. It implements the
// error interface and is shared between the HTTP handlers (to write error
// responses) and the SDK client (to surface them to callers).
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Code is the machine-readable error code (e.g., "not_found", "conflict")
	Code string `json:"error"`

	// Description is a human-readable description of the error
	Description string `json:"error_description"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes this APIError to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             e.Code,
		"error_description": e.Description,
	})
}

// ============================================================================
// Predefined API Errors
// ============================================================================

var (
	// ErrInvalidRequest is returned when the request body cannot be parsed
	// or is missing required parameters.
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required parameters",
	}

	// ErrInvalidCredentials is returned when username/password authentication
	// fails. The description never says which part was wrong.
	ErrInvalidCredentials = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidCredentials,
		Description: "invalid credentials",
	}

	// ErrInvalidGrant is returned when a refresh token or MFA exchange is
	// invalid, expired, revoked or already used.
	ErrInvalidGrant = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidGrant,
		Description: "the provided grant is invalid, expired or revoked",
	}

	// ErrInvalidToken is returned when the access token is missing, invalid,
	// expired or revoked.
	ErrInvalidToken = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidToken,
		Description: "the access token is missing, invalid, expired or revoked",
	}

	// ErrForbidden is returned when the caller's role does not grant the
	// capability the route requires.
	ErrForbidden = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeForbidden,
		Description: "the caller's role does not grant the required capability",
	}

	// ErrServerError is returned for unexpected failures. Details go to the
	// log, never to the response.
	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}
)

// NewAPIError creates an APIError with the given status code, error code and
// description. Handlers use it for resource-specific codes like
// "client_not_found" while keeping the envelope shape.
func NewAPIError(statusCode int, code, description string) *APIError {
	return &APIError{
		StatusCode:  statusCode,
		Code:        code,
		Description: description,
	}
}

// NotFoundError builds a 404 for a named resource, e.g. "client".
func NotFoundError(resource string) *APIError {
	return &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        resource + "_not_found",
		Description: resource + " not found",
	}
}

// ConflictError builds a 409 with a resource-specific code.
func ConflictError(code, description string) *APIError {
	return &APIError{
		StatusCode:  http.StatusConflict,
		Code:        code,
		Description: description,
	}
}

// ValidationError builds a 400 carrying the validation failure detail.
func ValidationError(description string) *APIError {
	return &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeValidation,
		Description: description,
	}
}

// ============================================================================
// MFA Challenge Response
// ============================================================================

// MFARequiredError is returned from the login endpoint when the account has
// a second factor enrolled. It is written as 409 Conflict: the credentials
// were right, but the session cannot be issued yet.
type MFARequiredError struct {
	// MFAToken is the single-use challenge reference to present to the MFA
	// completion endpoint
	MFAToken string `json:"mfa_token"`

	// Methods lists the accepted second-factor methods (e.g., ["totp", "backup_codes"])
	Methods []string `json:"methods"`
}

// Error implements the error interface.
func (e *MFARequiredError) Error() string {
	return fmt.Sprintf("MFA required: available methods=%v", e.Methods)
}

// WriteError writes the MFA challenge as a 409 Conflict in the standard
// error envelope, with the challenge fields alongside.
func (e *MFARequiredError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusConflict)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":             ErrorCodeMFARequired,
		"error_description": "multi-factor authentication is required to complete this login",
		"mfa_required":      true,
		"mfa_token":         e.MFAToken,
		"methods":           e.Methods,
	})
}

// ============================================================================
// Error Parsing Helpers
// ============================================================================

// parseErrorResponse turns a non-2xx HTTP response into a typed error. MFA
// challenges become *MFARequiredError, everything else an *APIError. A 2xx
// response returns nil.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	// An MFA challenge rides on 409 with the challenge fields inline.
	if resp.StatusCode == http.StatusConflict {
		var mfaResp struct {
			Error    string   `json:"error"`
			MFAToken string   `json:"mfa_token"`
			Methods  []string `json:"methods"`
		}
		if err := json.Unmarshal(body, &mfaResp); err == nil {
			if mfaResp.Error == ErrorCodeMFARequired && mfaResp.MFAToken != "" {
				return &MFARequiredError{
					MFAToken: mfaResp.MFAToken,
					Methods:  mfaResp.Methods,
				}
			}
		}
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	// Bootstrap validation failures use a field-level envelope discriminated
	// by "code" instead of "error".
	var valResp ValidationErrorResponse
	if err := json.Unmarshal(body, &valResp); err == nil && valResp.Code != "" {
		desc := valResp.Message
		if len(valResp.Details) > 0 {
			fields := make([]string, 0, len(valResp.Details))
			for field := range valResp.Details {
				fields = append(fields, field)
			}
			sort.Strings(fields)
			desc = fmt.Sprintf("%s (%s)", desc, strings.Join(fields, ", "))
		}
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        valResp.Code,
			Description: desc,
		}
	}

	// Responses without a body (bearer failures) fall back to the status.
	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
