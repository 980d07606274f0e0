package escalator

import (
	"errors"
	"strings"
)

var (
	ErrInvalidConfig     = errors.New("escalator: invalid config")
	ErrGasCeilingReached = errors.New("escalator: gas price ceiling reached without confirmation")
	// ErrNonceConsumed means the nonce slot was taken by a transaction this
	// escalation did not issue.
	ErrNonceConsumed = errors.New("escalator: nonce already consumed")
)

// Node error texts that mean an attempt was superseded rather than failed.
var replacementErrors = []string{
	"replacement transaction underpriced",
	"already known",
	"known transaction",
}

const nonceTooLow = "nonce too low"

// IsReplacementError reports whether err is a txpool rejection caused by
// another attempt occupying the same nonce.
func IsReplacementError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, s := range replacementErrors {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return isNonceTooLow(err)
}

func isNonceTooLow(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), nonceTooLow)
}
