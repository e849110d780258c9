// Package wire implements the single message framing used uniformly for
// peer gossip, chain sync, miner template coordination, and wallet
// transaction submission: every connection carries a sequence
// of `u64 length (little-endian) || canonical-encoded Message` frames.
package wire

import (
	"github.com/dkwon/toychain/internal/chain"
	"github.com/dkwon/toychain/pkg/btckey"
)

// Type tags which variant of Message is populated.
type Type uint8

const (
	TypeFetchBlock Type = iota + 1
	TypeNewBlock
	TypeNewTransaction
	TypeAskDifference
	TypeDifference
	TypeFetchTemplate
	TypeTemplate
	TypeValidateTemplate
	TypeTemplateValidity
	TypeSubmitTemplate
)

func (t Type) String() string {
	switch t {
	case TypeFetchBlock:
		return "FetchBlock"
	case TypeNewBlock:
		return "NewBlock"
	case TypeNewTransaction:
		return "NewTransaction"
	case TypeAskDifference:
		return "AskDifference"
	case TypeDifference:
		return "Difference"
	case TypeFetchTemplate:
		return "FetchTemplate"
	case TypeTemplate:
		return "Template"
	case TypeValidateTemplate:
		return "ValidateTemplate"
	case TypeTemplateValidity:
		return "TemplateValidity"
	case TypeSubmitTemplate:
		return "SubmitTemplate"
	default:
		return "Unknown"
	}
}

// Message is the tagged sum type carried by every frame. Only
// the field(s) relevant to Type are populated; the rest are left at
// their zero value and omitted from the wire encoding.
type Message struct {
	Type Type `cbor:"1,keyasint"`

	// Height carries FetchBlock's requested height or AskDifference's
	// local_height.
	Height uint64 `cbor:"2,keyasint,omitempty"`

	// Block carries NewBlock, Template, ValidateTemplate, and
	// SubmitTemplate payloads.
	Block *chain.Block `cbor:"3,keyasint,omitempty"`

	// Transaction carries NewTransaction's payload.
	Transaction *chain.Transaction `cbor:"4,keyasint,omitempty"`

	// Difference carries the signed height delta reply.
	Difference int64 `cbor:"5,keyasint,omitempty"`

	// PublicKey carries FetchTemplate's payout destination.
	PublicKey *btckey.PublicKey `cbor:"6,keyasint,omitempty"`

	// Valid carries TemplateValidity's reply.
	Valid bool `cbor:"7,keyasint,omitempty"`
}

// FetchBlock requests the block at the given height.
func FetchBlock(height uint64) Message {
	return Message{Type: TypeFetchBlock, Height: height}
}

// NewBlockMessage gossips or replies with a full block.
func NewBlockMessage(b chain.Block) Message {
	return Message{Type: TypeNewBlock, Block: &b}
}

// NewTransactionMessage submits a transaction to a node's mempool.
func NewTransactionMessage(tx chain.Transaction) Message {
	return Message{Type: TypeNewTransaction, Transaction: &tx}
}

// AskDifference asks a peer to compare its height against localHeight.
func AskDifference(localHeight uint64) Message {
	return Message{Type: TypeAskDifference, Height: localHeight}
}

// DifferenceReply answers AskDifference with a signed height delta.
func DifferenceReply(delta int64) Message {
	return Message{Type: TypeDifference, Difference: delta}
}

// FetchTemplateMessage requests a mining template paying pub.
func FetchTemplateMessage(pub btckey.PublicKey) Message {
	return Message{Type: TypeFetchTemplate, PublicKey: &pub}
}

// TemplateMessage replies with a candidate block to mine.
func TemplateMessage(b chain.Block) Message {
	return Message{Type: TypeTemplate, Block: &b}
}

// ValidateTemplateMessage asks whether a candidate template is still current.
func ValidateTemplateMessage(b chain.Block) Message {
	return Message{Type: TypeValidateTemplate, Block: &b}
}

// TemplateValidityReply answers ValidateTemplate.
func TemplateValidityReply(valid bool) Message {
	return Message{Type: TypeTemplateValidity, Valid: valid}
}

// SubmitTemplateMessage submits a completed (mined) block.
func SubmitTemplateMessage(b chain.Block) Message {
	return Message{Type: TypeSubmitTemplate, Block: &b}
}
