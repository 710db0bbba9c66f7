// Package domain defines the core business entities (paintings, quizzes, tags and
// quiz contexts) and the errors returned when they fail validation.
package domain
