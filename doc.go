// Package ptv is a typed client for the Public Transport Victoria timetable
// API, built around a small request execution core:
//
//   - Deterministic signed URL construction (canonical query + HMAC‑SHA1)
//   - Per‑URL single‑flight de‑duplication of in‑flight requests
//   - Global min‑interval throttling with adaptive exponential backoff
//   - Per‑request timeout guard via deadline contexts
//   - A closed, credential‑redacting error taxonomy
//   - Validator‑backed response schema checking
//   - Prometheus metrics and pluggable structured logging
//
// Design goals:
//   - Small surface area – functional options configure everything
//   - Instance‑owned state – independent clients never share throttle state
//   - Safe concurrent use of a single *Client instance
//   - Extensibility via an injectable transport, logger and metrics registry
//
// Typical usage:
//
//	client := ptv.New("https://timetableapi.ptv.vic.gov.au",
//	    ptv.SigningCredentials{DeveloperID: "3000176", Key: "secret"},
//	    ptv.WithMinInterval(200*time.Millisecond),
//	    ptv.WithTimeout(10*time.Second),
//	)
//	departures, err := ptv.CallAs[DeparturesResponse](ctx, client,
//	    "/v3/departures/route_type/0/stop/1071", ptv.Params{"max_results": 5})
//
// Nothing is retried transparently: a 429 or 5xx response only escalates the
// delay applied before the next dispatch. Callers decide whether to re-invoke.
package ptv
