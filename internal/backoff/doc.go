// Package backoff provides the reconnect delay generator used by listeners.
//
// A Backoff produces a non-decreasing sequence of jittered delays between a minimum and
// a maximum, tracks how many waits have been performed, and can be reset to its minimum.
package backoff
