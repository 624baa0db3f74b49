// Package api handles incoming HTTP requests: request decoding and
// validation, mapping of service errors to status codes, and response
// formatting. It adapts HTTP to the story, review, playlist, user and
// generation services.
package api
