package api

import (
	"iter"

	"github.com/danmuck/pharma_chain/src/chain"
)

// Blockchain is the ledger surface collaborators depend on.
// *chain.Ledger implements it.
type Blockchain interface {

	// Append an entry to the chain, linked to the current tip
	Append(p chain.Payload) (chain.Block, error)

	// Validate the chain by hashing each block
	// and comparing it to the previous blocks hash
	Validate() chain.ValidationResult

	// Validate only the blocks added after a trusted checkpoint
	ValidateFrom(cp chain.Checkpoint) chain.ValidationResult

	// Walk the chain from genesis, read only
	All() iter.Seq[chain.Block]

	// Number of blocks, genesis included
	Len() int

	// Most recent block
	Tip() chain.Block

	// Export the chain in its snapshot encoding
	MarshalBinary() ([]byte, error)
}

var _ Blockchain = (*chain.Ledger)(nil)
