package types

import "github.com/google/uuid"

// NewRunID issues an identifier attached to every log record of one CLI run.
func NewRunID() RunID {
	return RunID(uuid.NewString())
}
