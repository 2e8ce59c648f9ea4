package http

import (
	"net/http"

	"budgetplanner/internal/core"
	"budgetplanner/internal/log"
)

const internalErrorMessage = "internal server error"

// statusFor maps a domain error kind onto an HTTP status. Business-rule
// failures are all client errors; only unclassified errors become 500.
func statusFor(kind core.Kind) int {
	switch kind {
	case core.KindValidation, core.KindConflict, core.KindConstraint:
		return http.StatusBadRequest
	case core.KindUnauthenticated:
		return http.StatusUnauthorized
	case core.KindForbidden:
		return http.StatusForbidden
	case core.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func errorType(kind core.Kind) string {
	switch kind {
	case core.KindValidation, core.KindConstraint:
		return log.ErrorTypeValidation
	case core.KindConflict:
		return log.ErrorTypeConflict
	case core.KindUnauthenticated:
		return log.ErrorTypeAuth
	case core.KindForbidden:
		return log.ErrorTypeForbidden
	case core.KindNotFound:
		return log.ErrorTypeNotFound
	default:
		return log.ErrorTypeInternal
	}
}

// writeError sends err as {"error": "..."}. Unclassified errors are logged
// in full and replaced by a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := core.KindOf(err)
	status := statusFor(kind)
	msg := core.Message(err)

	logger := log.FromContext(r.Context()).WithComponent(log.ComponentHTTP)
	if status == http.StatusInternalServerError {
		log.NewStructuredLogger(logger).LogError(r.Context(), "Request failed", err, log.ComponentHTTP, r.Method+" "+r.Pattern,
			log.NewFields().WithErrorType(errorType(kind)))
		msg = internalErrorMessage
	} else {
		logger.DebugContext(r.Context(), "Request rejected",
			log.FieldError, err.Error(),
			log.FieldErrorType, errorType(kind))
	}

	_ = NewJSONResponse().Status(status).Error(msg).Write(w)
}
