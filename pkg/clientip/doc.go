// Package clientip resolves the caller's IP address behind reverse proxies and
// exposes it through the request context and structured logs.
package clientip
