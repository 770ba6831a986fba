// Package subscription addresses ntfy topic subscriptions.
//
// The package includes:
//
//   - BuildURL: Stream URL construction for an endpoint, topic and resume cursor
//   - ID: Stable subscription identifiers used by the listener pool
//
// Endpoint and topic validation happens here so the listener can treat a malformed
// configuration like any other failed connection attempt.
package subscription
