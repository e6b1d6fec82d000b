// Package api exposes the list and task services over JSON HTTP. It
// translates requests into service calls and service errors into status
// codes: validation failures become 400, missing tasks or lists 404, and
// storage failures 500 with the cause logged in redacted form only.
package api
