// Package correlate derives the deterministic content hash that identifies a
// transaction request across asynchronous hops. All broadcast, warning routing,
// and audit lookups key on this id, so it must be bit-reproducible: the request
// is reduced to a canonical JSON form with all object keys sorted before
// hashing. Two requests equal up to field ordering always produce the same id.
package correlate

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/txwarden/txwarden/internal/model"
)

// Correlate computes the correlation id for a request: a sha256 hex digest
// over the canonical serialization. Pure; the only failure mode is a
// malformed request.
func Correlate(req model.TransactionRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	canon, err := Canonical(req)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canon)
	return hex.EncodeToString(sum[:]), nil
}

// Canonical returns the canonical serialization of the request: a JSON
// document built from maps so that encoding/json emits every object with
// lexicographically sorted keys, recursively.
func Canonical(req model.TransactionRequest) ([]byte, error) {
	txs := make([]map[string]any, len(req.Transactions))
	for i, tx := range req.Transactions {
		txs[i] = map[string]any{
			"to":    tx.To,
			"data":  tx.Data,
			"value": tx.Value,
		}
	}
	doc := map[string]any{
		"transactions": txs,
		"safeAddress":  req.SafeAddress,
		"safeTxHash":   req.SafeTxHash,
		"reason":       req.Reason,
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("canonical serialization: %w", err)
	}
	return out, nil
}
