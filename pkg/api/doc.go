// Package api serves the split pipeline over HTTP.
//
// # Routes
//
//	GET  /healthz                 liveness probe
//	POST /v1/plan                 partition one entity size, no identifiers
//	POST /v1/split                split a dataset, returns a run
//	GET  /v1/runs/{id}            run summary
//	GET  /v1/runs/{id}/result     split result in the pkg/io format
//	GET  /v1/runs/{id}/graph      identifier map as DOT or SVG (?format=)
//
// Splits run synchronously; a successful POST /v1/split answers 201 with the
// finished run. Runs are kept in memory and written through to the runner's
// cache, so a second server sharing a Redis or MongoDB cache can serve them.
//
// # Errors
//
// Error bodies are {"code": ..., "message": ...} using the codes of
// pkg/errors. Input and parameter problems answer 400, fatal splitting
// errors answer 422 and unknown runs answer 404.
package api
