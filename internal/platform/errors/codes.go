// Package errors provides structured error handling with gRPC status mapping.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Credential errors
	CodeCredentialUsernameEmpty    Code = "CREDENTIAL_USERNAME_EMPTY"
	CodeCredentialPasswordEmpty    Code = "CREDENTIAL_PASSWORD_EMPTY"
	CodeCredentialBootstrapInvalid Code = "CREDENTIAL_BOOTSTRAP_INVALID"

	// Sign-in errors
	CodeInvalidCredentials   Code = "INVALID_CREDENTIALS"
	CodeSignInRequestInvalid Code = "SIGN_IN_REQUEST_INVALID"

	// Locale errors
	CodeUnsupportedLocale Code = "UNSUPPORTED_LOCALE"

	// Storage errors
	CodeNotFound        Code = "NOT_FOUND"
	CodeSessionNotFound Code = "SESSION_NOT_FOUND"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeCredentialUsernameEmpty,
		CodeCredentialPasswordEmpty,
		CodeCredentialBootstrapInvalid,
		CodeSignInRequestInvalid,
		CodeUnsupportedLocale:
		return codes.InvalidArgument

	// Unauthenticated - credentials rejected
	case CodeInvalidCredentials:
		return codes.Unauthenticated

	// NotFound - resource doesn't exist
	case CodeNotFound,
		CodeSessionNotFound:
		return codes.NotFound

	default:
		return codes.Internal
	}
}
