package interfaces

import "net/http"

// HTTPHandler is the presentation entry point mounted by cmd/server.
type HTTPHandler interface {
	http.Handler
}
