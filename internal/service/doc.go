// Package service contains the application use cases behind the HTTP API.
// It orchestrates the stores (defined in internal/store), the quiz context
// scheduler, the counter buffers and the create-request batcher.
//
// Key components:
//
//   - QuizService: quiz page scheduling with retry over empty contexts,
//     context validation and registration, the fixed weekly contexts, and
//     buffered view and submission counters.
//   - TagService: tag creation, deduplicated per batching window and stored
//     in one transaction per window.
//
// Services receive their dependencies through constructor injection and
// translate store and scheduler errors into the sentinel errors of this
// package, which the API layer maps to HTTP status codes.
package service
