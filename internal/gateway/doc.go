// Package gateway wires the desk-gateway components together and serves
// the HTTP boundary.
//
// # Overview
//
// One inbound envelope arrives per POST. The ingress buffers and decodes
// it, drops transport redeliveries, and dispatches through the message
// router to the end-user or SME handler. The turn completes, success or
// failure, before the HTTP response is written; the gateway implements no
// retries of its own.
//
// # Endpoints
//
//	POST /api/messages          envelope ingress
//	POST /api/messages/user     same ingress (deployment convenience)
//	POST /api/messages/sme      same ingress (deployment convenience)
//	GET  /health                liveness probe
//	GET  /api/tickets           admin: list tickets (JWT)
//	GET  /api/tickets/{id}      admin: one ticket (JWT)
//	PUT  /api/settings/{key}    admin: update a setting (JWT)
//
// The per-audience ingress endpoints exist so either deployment shape
// works; routing always comes from the envelope's recipient identity.
package gateway
