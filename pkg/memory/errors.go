package memory

import "fmt"

// EmbeddingError indicates the embedding capability was unreachable or
// returned a non-success status. The raw response body is kept for
// diagnosis. Writes that hit this error leave no partial point behind.
type EmbeddingError struct {
	Body string
	Err  error
}

func (e *EmbeddingError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("embedding request failed: %s", e.Body)
	}

	return fmt.Sprintf("embedding request failed: %v", e.Err)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Err
}

// ParseError indicates the summarization capability returned text that
// did not contain a parseable JSON object. It is recoverable: the
// Reflector degrades to a sentinel draft carrying the raw text.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("reflection parse failed: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
