package pathutil

import (
	"fmt"

	"github.com/google/uuid"
)

// pointNamespace is the fixed namespace UUID point ids are derived
// under. It has no meaning beyond being constant across processes and
// releases, so that re-indexing unchanged content always reproduces
// the same point id.
var pointNamespace = uuid.MustParse("6f5d2b3a-6e9a-4f7b-9b0a-2a6f9e1c7d4a")

// DerivePointID deterministically derives a vector-store point id from
// a file's content hash and a chunk index, so identical content always
// maps to the same id and upsert becomes idempotent across processes.
func DerivePointID(fileHash string, chunkIndex int) uuid.UUID {
	name := fmt.Sprintf("%s/%d", fileHash, chunkIndex)
	return uuid.NewSHA1(pointNamespace, []byte(name))
}
