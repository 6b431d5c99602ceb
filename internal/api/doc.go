// Package api exposes the card pipeline over HTTP. Handlers decode and
// validate JSON requests, call the services through small interfaces, map
// the error taxonomy to status codes and shape responses, including the
// download URLs of generated artifacts.
package api
