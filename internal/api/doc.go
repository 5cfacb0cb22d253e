// Package api provides the HTTP surface of the booking coordination core:
// booking lifecycle, dispatch inbox, trust handshake, location relay,
// payment reconciliation and safety escalation endpoints. Handlers decode
// and validate requests, delegate to the services, and translate service
// errors into sanitized responses.
package api
