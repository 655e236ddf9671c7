// Package weberror maps request failures to HTTP statuses and renders the
// localized error page.
package weberror

import (
	"context"
	"errors"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	apperrors "github.com/louisbranch/bookstore/internal/platform/errors"
	"github.com/louisbranch/bookstore/internal/services/shared/htmx"
	"github.com/louisbranch/bookstore/internal/services/web/templates"
)

// HTTPStatus maps an error to an HTTP status code. Domain codes win, then
// deadline and gRPC transport failures, then 500.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch apperrors.CodeOf(err) {
	case apperrors.CodeUnknown:
	case apperrors.CodeInvalidCredentials:
		return http.StatusUnauthorized
	default:
		return grpcCodeHTTPStatus(apperrors.CodeOf(err).GRPCCode(), http.StatusInternalServerError)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	st, ok := status.FromError(err)
	if !ok {
		return http.StatusInternalServerError
	}
	return grpcCodeHTTPStatus(st.Code(), http.StatusInternalServerError)
}

func grpcCodeHTTPStatus(code codes.Code, fallback int) int {
	switch code {
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.NotFound:
		return http.StatusNotFound
	case codes.Unavailable, codes.DeadlineExceeded:
		return http.StatusServiceUnavailable
	default:
		return fallback
	}
}

// Write renders the error page for status. Plain text is the fallback when
// the page itself fails to render.
func Write(w http.ResponseWriter, r *http.Request, page templates.PageContext, status int) {
	if status < http.StatusBadRequest {
		status = http.StatusInternalServerError
	}
	if err := htmx.RenderPage(r.Context(), w, r, templates.ErrorPage(page, status), status, templates.ErrorTitle(page)); err != nil {
		http.Error(w, http.StatusText(status), status)
	}
}
