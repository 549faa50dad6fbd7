package domain

import "fmt"

// CancelState is the in-memory contract for a transaction's cancellation
// lifecycle. The persisted encodings differ per module (a legacy wart), so
// repositories translate through the module codec instead of unifying the
// stored values.
type CancelState string

const (
	StateActive    CancelState = "ACTIVE"
	StateCancelled CancelState = "CANCELLED"
	// StateDeleted means hidden from lists but retained in storage.
	StateDeleted CancelState = "DELETED"
)

// LegacyCancelFlags is the union of the persisted encodings: char-flag
// modules fill Flag, boolean-pair modules fill IsCancel/IsDeleted.
type LegacyCancelFlags struct {
	Flag      string
	IsCancel  bool
	IsDeleted bool
}

// CancelCodec translates between CancelState and a module's legacy encoding.
type CancelCodec interface {
	Encode(state CancelState) LegacyCancelFlags
	Decode(flags LegacyCancelFlags) (CancelState, error)
}

// CodecFor returns the cancel-state codec for a module.
func CodecFor(module ModuleType) CancelCodec {
	switch module {
	case CashReceipt, CashDisbursement:
		return charCodec{active: "n", cancelled: "c", deleted: "d"}
	case GeneralAccounting:
		return charCodec{active: "n", cancelled: "y", deleted: "d"}
	case CashSales, CashPurchase:
		return boolPairCodec{}
	}
	return charCodec{active: "n", cancelled: "c", deleted: "d"}
}

// charCodec covers the modules persisting a single status character.
type charCodec struct {
	active, cancelled, deleted string
}

func (c charCodec) Encode(state CancelState) LegacyCancelFlags {
	switch state {
	case StateCancelled:
		return LegacyCancelFlags{Flag: c.cancelled}
	case StateDeleted:
		return LegacyCancelFlags{Flag: c.deleted}
	default:
		return LegacyCancelFlags{Flag: c.active}
	}
}

func (c charCodec) Decode(flags LegacyCancelFlags) (CancelState, error) {
	switch flags.Flag {
	case c.active:
		return StateActive, nil
	case c.cancelled:
		return StateCancelled, nil
	case c.deleted:
		return StateDeleted, nil
	}
	return StateActive, fmt.Errorf("unknown cancel flag %q", flags.Flag)
}

// boolPairCodec covers the modules persisting is_cancel/is_deleted booleans.
type boolPairCodec struct{}

func (boolPairCodec) Encode(state CancelState) LegacyCancelFlags {
	return LegacyCancelFlags{
		IsCancel:  state == StateCancelled,
		IsDeleted: state == StateDeleted,
	}
}

func (boolPairCodec) Decode(flags LegacyCancelFlags) (CancelState, error) {
	// Deleted wins over cancelled when both are set; the legacy UI could
	// leave both flags on after a cancel-then-delete sequence.
	if flags.IsDeleted {
		return StateDeleted, nil
	}
	if flags.IsCancel {
		return StateCancelled, nil
	}
	return StateActive, nil
}
