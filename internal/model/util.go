package model

import (
	"github.com/btcsuite/btcutil/base58"
	"github.com/google/uuid"
)

// CreateID returns a short random identifier, used for the synthetic post
// ids handed out under dry-run.
func CreateID() string {
	uuid, _ := uuid.NewRandom()
	return base58.Encode(uuid[:])
}
