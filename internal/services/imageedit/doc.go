// Package imageedit talks to an OpenAI-compatible image edit endpoint
// (POST /v1/images/edits) to produce masked recolor candidates.
//
// The Client is built once from an explicit ClientConfig and is safe for
// concurrent use. A shared Limiter spaces calls by the configured interval
// across every goroutine using the client, and transient HTTP failures are
// retried with capped exponential backoff. Responses are validated against a
// strict schema: anything other than a decodable base64 image is reported as
// services.ErrExternalService.
package imageedit
