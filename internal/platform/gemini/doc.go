// Package gemini implements generation.Generator on top of Google's Gemini API.
//
// Prompts are rendered from embedded templates and the model is asked for a
// JSON response, which is decoded and validated before it reaches the caller.
// Transient API failures are retried with exponential backoff and jitter;
// malformed or blocked responses are returned immediately.
package gemini
