// Package http contains the chi HTTP handlers for uploads, derived views,
// exports and health. Handlers translate between the REST surface and the
// service layer; all error responses are RFC 7807 problem documents.
package http
