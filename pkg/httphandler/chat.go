package httphandler

import (
	"errors"
	"net/http"

	// Packages
	httprequest "github.com/mutablelogic/go-server/pkg/httprequest"
	httpresponse "github.com/mutablelogic/go-server/pkg/httpresponse"
	openapi "github.com/mutablelogic/go-server/pkg/openapi/schema"
	types "github.com/mutablelogic/go-server/pkg/types"
	aitoolkit "github.com/ueberdosis/go-aitoolkit"
	manager "github.com/ueberdosis/go-aitoolkit/pkg/manager"
	ratelimit "github.com/ueberdosis/go-aitoolkit/pkg/ratelimit"
	schema "github.com/ueberdosis/go-aitoolkit/pkg/schema"
	stream "github.com/ueberdosis/go-aitoolkit/pkg/stream"
)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	RateLimitMessage = "Rate limit exceeded. Please try again later."
)

///////////////////////////////////////////////////////////////////////////////
// HANDLER FUNCTIONS

// Path: /api/chat
func ChatHandler(manager *manager.Manager) (string, http.HandlerFunc, *openapi.PathItem) {
	return "/api/chat", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost:
				// Rate limiting
				if err := manager.Admit(r.Context(), ratelimit.ClientKey(r)); err != nil {
					if errors.Is(err, aitoolkit.ErrTooManyRequests) {
						rateLimited(w)
					} else {
						_ = httpresponse.Error(w, httpErr(err))
					}
					return
				}

				// Read the request body
				var req schema.ChatRequest
				if err := httprequest.Read(r, &req); err != nil {
					_ = httpresponse.Error(w, httpErr(aitoolkit.ErrUnprocessable.With(err)))
					return
				} else if req.Messages == nil {
					_ = httpresponse.Error(w, httpErr(aitoolkit.ErrUnprocessable.With("messages is required")))
					return
				}

				// The provider must be configured before the stream starts
				if err := manager.Ready(); err != nil {
					_ = httpresponse.Error(w, httpErr(err))
					return
				}

				// Stream the session. Failures after this point are in-band.
				writer := stream.NewWriter(w)
				if err := manager.Chat(r.Context(), req.Messages, writer); err != nil && !writer.Closed() {
					_ = writer.Write(schema.NewError(err.Error()))
				}
			default:
				_ = httpresponse.Error(w, httpresponse.Err(http.StatusMethodNotAllowed), r.Method)
			}
		}, types.Ptr(openapi.PathItem{
			Post: &openapi.Operation{
				Description: "Stream a chat completion with client-executed tool calls",
			},
		})
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func rateLimited(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(RateLimitMessage))
}
