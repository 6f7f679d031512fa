// Package server exposes a suspect.Store over HTTP.
//
// The JSON API lists, reads and patches suspects. The watch endpoint upgrades
// to a WebSocket and pushes a suspect's report every time a property the
// report read changes, using one observation.Track scope per render:
//
//	GET   /suspects
//	GET   /suspects/{id}
//	PATCH /suspects/{id}
//	GET   /suspects/{id}/report
//	GET   /suspects/{id}/watch
//	GET   /healthz
package server
