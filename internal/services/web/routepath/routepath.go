// Package routepath stores canonical HTTP paths for the web service.
package routepath

const (
	Root         = "/"
	Login        = "/login"
	Logout       = "/logout"
	About        = "/about"
	Locale       = "/locale"
	Health       = "/healthz"
	Metrics      = "/metrics"
	StaticPrefix = "/static/"
)

// HintParam is the login query parameter that shows the password hint.
const HintParam = "hint"

// LoginHint is the login screen with the forgot-password hint shown.
const LoginHint = Login + "?" + HintParam + "=1"
