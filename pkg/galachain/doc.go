// Package galachain looks up the registered public key of a GalaChain wallet
// address through the public-key contract's GetPublicKey endpoint.
//
// Lookups are POSTed as {"user": address}. Server errors and transport
// failures are retried with exponential backoff, and every attempt is
// bounded by Config.Timeout.
package galachain
