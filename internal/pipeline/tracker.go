package pipeline

import "sync/atomic"

// Token identifies one lookup
type Token uint64

// Tracker issues increasing tokens so that only the latest lookup's results
// are applied. Results from superseded lookups are dropped.
type Tracker struct {
	latest atomic.Uint64
}

// Next issues a new token, superseding every earlier one
func (t *Tracker) Next() Token {
	return Token(t.latest.Add(1))
}

// IsCurrent reports whether tok is the most recently issued token
func (t *Tracker) IsCurrent(tok Token) bool {
	return tok != 0 && uint64(tok) == t.latest.Load()
}
