// Package batch collapses concurrent requests that share a key into a single
// bulk operation per time window.
//
// Callers block in Add until the window they joined has been processed. All
// callers that supplied the same key in one window receive the same outcome,
// and the process function sees that key only once.
package batch
