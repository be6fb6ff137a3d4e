// Package transport is the REST client used to run queries.
//
// A Client sends authenticated GET requests to the query resource of one
// org, follows result pages until the result is complete, and describes
// the columns of a query. Requests can be routed through a SOCKS5 proxy
// (golang.org/x/net/proxy), and CheckProxy verifies such a proxy before
// use. Non-2xx answers are returned as *APIError.
package transport
