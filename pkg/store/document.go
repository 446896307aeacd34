package store

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Document represents a retrieved knowledge-base document. Returned sets
// never contain two documents with identical normalized content.
type Document struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Content  string            `json:"content"`
	Source   string            `json:"source"`
	Score    float64           `json:"score"` // higher = more relevant
	Query    string            `json:"query"` // originating (expanded) query
	Metadata map[string]string `json:"metadata,omitempty"`
}

// ContentHash returns the dedup key: a hash of the normalized content.
func (d Document) ContentHash() string {
	norm := strings.Join(strings.Fields(strings.ToLower(d.Content)), " ")
	sum := sha256.Sum256([]byte(norm))
	return hex.EncodeToString(sum[:])
}
