package transport

import (
	"errors"
	"net/http"

	"github.com/cocoinbox/cocoinbox/internal/common"
	"google.golang.org/grpc/codes"
)

// Failure is how one error kind is presented on both transports.
type Failure struct {
	GRPC    codes.Code
	HTTP    int
	Code    string
	Message string
}

var failures = []struct {
	err error
	f   Failure
}{
	{common.ErrorUnauthenticated, Failure{codes.Unauthenticated, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required"}},
	{common.ErrorInvalidCredentials, Failure{codes.Unauthenticated, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password"}},
	{common.ErrorUserExists, Failure{codes.AlreadyExists, http.StatusConflict, "USER_EXISTS", "user already exists"}},
	{common.ErrorNotFound, Failure{codes.NotFound, http.StatusNotFound, "NOT_FOUND", "not found"}},
	{common.ErrorValidation, Failure{codes.InvalidArgument, http.StatusBadRequest, "VALIDATION", ""}},
	{common.ErrorDownloadLimitReached, Failure{codes.ResourceExhausted, http.StatusGone, "DOWNLOAD_LIMIT_REACHED", "download limit reached"}},
	{common.ErrorProviderUnavailable, Failure{codes.Unavailable, http.StatusBadGateway, "PROVIDER_UNAVAILABLE", "mail provider unavailable"}},
}

var internalFailure = Failure{codes.Internal, http.StatusInternalServerError, "INTERNAL", "internal error"}

// FailureOf classifies err. Validation failures keep their detail; every
// other kind uses a fixed message so nothing internal leaks.
func FailureOf(err error) Failure {
	for _, e := range failures {
		if errors.Is(err, e.err) {
			f := e.f
			if f.Message == "" {
				f.Message = err.Error()
			}
			return f
		}
	}
	return internalFailure
}
