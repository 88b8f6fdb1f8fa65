// Package api implements the JSON:API transport for the Snapgate REST
// service.
//
// This is the SDK-internal HTTP layer: it owns request assembly (auth
// token, content negotiation, request IDs), the JSON:API document
// envelope, and error mapping. The public snapgate package converts
// these types into its own API surface.
package api
