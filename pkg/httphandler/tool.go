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
)

///////////////////////////////////////////////////////////////////////////////
// HANDLER FUNCTIONS

// Path: /api/tools
func ToolListHandler(manager *manager.Manager) (string, http.HandlerFunc, *openapi.PathItem) {
	return "/api/tools", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				defs := manager.Toolkit().Definitions()
				_ = httpresponse.JSON(w, http.StatusOK, httprequest.Indent(r), schema.ListToolResponse{
					Count: uint(len(defs)),
					Body:  defs,
				})
			default:
				_ = httpresponse.Error(w, httpresponse.Err(http.StatusMethodNotAllowed), r.Method)
			}
		}, types.Ptr(openapi.PathItem{
			Get: &openapi.Operation{
				Description: "List the tools offered to the model",
			},
		})
}
