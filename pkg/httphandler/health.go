package httphandler

import (
	"net/http"

	// Packages
	httprequest "github.com/mutablelogic/go-server/pkg/httprequest"
	httpresponse "github.com/mutablelogic/go-server/pkg/httpresponse"
	openapi "github.com/mutablelogic/go-server/pkg/openapi/schema"
	types "github.com/mutablelogic/go-server/pkg/types"
	manager "github.com/ueberdosis/go-aitoolkit/pkg/manager"
	schema "github.com/ueberdosis/go-aitoolkit/pkg/schema"
	version "github.com/ueberdosis/go-aitoolkit/pkg/version"
)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	ServiceName = "AI Toolkit Chat API"
)

///////////////////////////////////////////////////////////////////////////////
// HANDLER FUNCTIONS

// Path: /
func HealthHandler(manager *manager.Manager) (string, http.HandlerFunc, *openapi.PathItem) {
	return "/", func(w http.ResponseWriter, r *http.Request) {
			// The root pattern matches every unregistered path
			if r.URL.Path != "/" {
				_ = httpresponse.Error(w, httpresponse.ErrNotFound, r.URL.Path)
				return
			}
			switch r.Method {
			case http.MethodGet, http.MethodHead:
				resp := schema.HealthResponse{
					Status:  schema.StatusRunning,
					Name:    ServiceName,
					Version: version.Version(),
				}
				if err := manager.Ready(); err != nil {
					resp.Message = err.Error()
				}
				_ = httpresponse.JSON(w, http.StatusOK, httprequest.Indent(r), resp)
			default:
				_ = httpresponse.Error(w, httpresponse.Err(http.StatusMethodNotAllowed), r.Method)
			}
		}, types.Ptr(openapi.PathItem{
			Get: &openapi.Operation{
				Description: "Service status",
			},
		})
}
