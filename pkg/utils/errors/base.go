package errors

import "net/http"

// Common base errors shared by all services.
var (
	// OK indicates success.
	OK = &Errno{Code: 0, HTTP: http.StatusOK, Msg: "OK"}

	// ErrBadRequest indicates a malformed request.
	ErrBadRequest = Register(New(MakeCode(ServiceCommon, CategoryRequest, 1), http.StatusBadRequest, "Bad request"))

	// ErrInvalidParam indicates an invalid request parameter.
	ErrInvalidParam = Register(New(MakeCode(ServiceCommon, CategoryRequest, 2), http.StatusBadRequest, "Invalid parameter"))

	// ErrUnauthorized indicates a missing or invalid credential.
	ErrUnauthorized = Register(New(MakeCode(ServiceCommon, CategoryAuth, 1), http.StatusUnauthorized, "Unauthorized"))

	// ErrTokenInvalid indicates an invalid or expired bearer token.
	ErrTokenInvalid = Register(New(MakeCode(ServiceCommon, CategoryAuth, 2), http.StatusUnauthorized, "Invalid or expired token"))

	// ErrForbidden indicates the caller does not own the resource.
	ErrForbidden = Register(New(MakeCode(ServiceCommon, CategoryPermission, 1), http.StatusForbidden, "Forbidden"))

	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = Register(New(MakeCode(ServiceCommon, CategoryResource, 1), http.StatusNotFound, "Resource not found"))

	// ErrInternal indicates an unexpected internal error.
	ErrInternal = Register(New(MakeCode(ServiceCommon, CategoryInternal, 1), http.StatusInternalServerError, "Internal server error"))

	// ErrDatabase indicates a storage-layer failure.
	ErrDatabase = Register(New(MakeCode(ServiceCommon, CategoryDatabase, 1), http.StatusInternalServerError, "Database error"))

	// ErrTimeout indicates an operation exceeded its deadline.
	ErrTimeout = Register(New(MakeCode(ServiceCommon, CategoryTimeout, 1), http.StatusGatewayTimeout, "Operation timed out"))
)
