// Package http implements the HTTP handlers for the sleep dataset service.
// Handlers stay thin: they parse and validate request parameters, delegate to
// the dataset service, and translate service errors onto the API surface.
// Derived views are recomputed per request, so every response reflects the
// parameters it was asked for.
package http
