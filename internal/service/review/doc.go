// Package review implements the review workflow: load a story, schedule the
// reviewed association and save the story again, all inside one transaction
// that holds the story's row lock.
package review
