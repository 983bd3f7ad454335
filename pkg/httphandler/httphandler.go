package httphandler

import (
	"errors"
	"net/http"

	// Package
	server "github.com/mutablelogic/go-server"
	httpresponse "github.com/mutablelogic/go-server/pkg/httpresponse"
	openapi "github.com/mutablelogic/go-server/pkg/openapi/schema"
	aitoolkit "github.com/ueberdosis/go-aitoolkit"
	manager "github.com/ueberdosis/go-aitoolkit/pkg/manager"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type Router interface {
	RegisterFunc(path string, handler http.HandlerFunc, middleware bool, spec *openapi.PathItem) error
}

func RegisterHandlers(manager *manager.Manager, router server.HTTPRouter, middleware bool) error {
	var result error

	// Convenience function to register a handler and accumulate any errors
	register := func(path string, handler http.HandlerFunc, spec *openapi.PathItem) {
		result = errors.Join(result, router.(Router).RegisterFunc(path, handler, middleware, spec))
	}

	// Register handlers
	register(HealthHandler(manager))
	register(ToolListHandler(manager))
	register(ChatHandler(manager))

	// Return any errors
	return result
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// httpErr converts an aitoolkit.Err to an httpresponse.Err, preserving the
// original error message. Unknown error codes map to 500.
func httpErr(err error) error {
	var code aitoolkit.Err
	if !errors.As(err, &code) {
		return err
	}
	switch code {
	case aitoolkit.ErrNotFound:
		return httpresponse.ErrNotFound.With(err)
	case aitoolkit.ErrBadParameter:
		return httpresponse.ErrBadRequest.With(err)
	case aitoolkit.ErrUnprocessable:
		return httpresponse.Err(http.StatusUnprocessableEntity).With(err)
	case aitoolkit.ErrTooManyRequests:
		return httpresponse.Err(http.StatusTooManyRequests).With(err)
	case aitoolkit.ErrNotImplemented:
		return httpresponse.ErrNotImplemented.With(err)
	default:
		return httpresponse.ErrInternalError.With(err)
	}
}
