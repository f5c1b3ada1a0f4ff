package http

import (
	"net/http"

	"github.com/mzotova/threadline/internal/common/constants"
	"github.com/mzotova/threadline/internal/common/httpmetrics"
	"github.com/mzotova/threadline/internal/common/logger"
)

func BuildBaseHandler(log *logger.Logger, handler http.Handler) http.Handler {
	recovery := RecoveryMiddleware(log)
	traceID := TraceIDMiddleware
	maxRequestSize := MaxRequestSizeMiddleware(constants.DefaultMaxRequestSize)
	securityHeaders := SecurityHeadersMiddleware
	csp := ContentSecurityPolicyMiddleware("")

	return securityHeaders(csp(recovery(traceID(maxRequestSize(httpmetrics.Wrap(handler))))))
}
