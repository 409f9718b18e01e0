// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (status,
duration_ms). The status comes from a recording ResponseWriter wrapper,
so a producer pipeline stuck on 409s shows up in the log directly.

# CORS Middleware

Enable cross-origin requests from observer web clients:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Observer identity travels in the X-Observer-Token header rather than
cookies, so responses are uncredentialed with a wildcard origin. Allows
methods GET, POST, PUT, OPTIONS with headers Content-Type and
X-Observer-Token; preflights answer 204 and are cacheable for a day.
Camera producers call server-to-server and bypass CORS entirely.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

Parse JSON request bodies:

	var req models.ReportThreatRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)

Used for IP hashing in abuse detection.
*/
package middleware
