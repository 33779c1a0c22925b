// Package api serves the cut detection HTTP API and provides a client for it.
//
// # Routes
//
//	GET  /api/health          liveness probe, {"status":"ok"}
//	POST /api/detect-cuts     multipart upload, NDJSON progress stream
//	GET  /api/analyses        recent analyses from the history database
//	GET  /api/analyses/{id}   one analysis with its bookmarks
//	GET  /metrics             Prometheus exposition
//
// Every response carries an X-Request-ID header; the same identifier appears
// as correlation_id on log lines emitted while serving the request.
//
// # Streaming
//
// detect-cuts validates the upload before writing anything. Once the 200
// header is sent, every failure is reported in-band as a single error event;
// the upload's temporary copy is removed when the handler returns.
//
// # CORS
//
// Origins come from [server] allowed_origins. Matching origins receive
// credentialed CORS headers; a preflight from any other origin is refused
// with 403 and plain requests pass through without CORS headers.
package api
