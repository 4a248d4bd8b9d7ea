package model

import "time"

// Citation records that CitingTextID cites CitedTextID.
// IDs are ULIDs, so lexical order is creation order.
type Citation struct {
	ID           string
	CitingTextID string
	CitedTextID  string
	CreatedAt    time.Time
}
