package shared

import (
	"github.com/google/uuid"
)

// canonicalNamespace is the fixed UUID namespace for canonical record IDs.
// It must never change: canonical IDs are derived from it and changing it
// would break upsert idempotency for already-imported records.
var canonicalNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// CanonicalID derives the internal ID for an external record.
// The ID is a pure function of (sourceTag, externalID), so importing the
// same external record twice upserts the same row instead of creating a
// duplicate.
func CanonicalID(sourceTag, externalID string) uuid.UUID {
	return uuid.NewSHA1(canonicalNamespace, []byte(sourceTag+":"+externalID))
}
