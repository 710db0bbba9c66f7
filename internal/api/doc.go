// Package api contains the HTTP handlers of the quiz service: quiz
// scheduling and counters, tag creation, painting lookups and the
// administrator endpoints. Handlers decode and validate requests, call
// the service layer and map its errors to status codes without leaking
// internal details.
package api
