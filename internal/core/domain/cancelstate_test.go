package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCharCodecRoundTrip(t *testing.T) {
	for _, module := range []ModuleType{CashReceipt, CashDisbursement, GeneralAccounting} {
		codec := CodecFor(module)
		for _, state := range []CancelState{StateActive, StateCancelled, StateDeleted} {
			decoded, err := codec.Decode(codec.Encode(state))
			assert.NoError(t, err)
			assert.Equal(t, state, decoded, "module %s state %s", module, state)
		}
	}
}

func TestCharCodecModuleEncodings(t *testing.T) {
	// CR/CD use 'c' for cancelled, GA uses 'y'. Same meaning, different bytes.
	assert.Equal(t, "c", CodecFor(CashReceipt).Encode(StateCancelled).Flag)
	assert.Equal(t, "y", CodecFor(GeneralAccounting).Encode(StateCancelled).Flag)
	assert.Equal(t, "n", CodecFor(CashDisbursement).Encode(StateActive).Flag)
	assert.Equal(t, "d", CodecFor(GeneralAccounting).Encode(StateDeleted).Flag)
}

func TestCharCodecUnknownFlag(t *testing.T) {
	_, err := CodecFor(CashReceipt).Decode(LegacyCancelFlags{Flag: "x"})
	assert.Error(t, err)
}

func TestBoolPairCodec(t *testing.T) {
	codec := CodecFor(CashSales)

	for _, state := range []CancelState{StateActive, StateCancelled, StateDeleted} {
		decoded, err := codec.Decode(codec.Encode(state))
		assert.NoError(t, err)
		assert.Equal(t, state, decoded)
	}

	// Deleted wins when both flags are set.
	decoded, err := codec.Decode(LegacyCancelFlags{IsCancel: true, IsDeleted: true})
	assert.NoError(t, err)
	assert.Equal(t, StateDeleted, decoded)
}

func TestModulePolicies(t *testing.T) {
	assert.True(t, PolicyFor(GeneralAccounting).AllowDuplicateAccounts)
	assert.False(t, PolicyFor(CashReceipt).AllowDuplicateAccounts)

	assert.True(t, PolicyFor(CashReceipt).HasBankRow)
	assert.True(t, PolicyFor(CashDisbursement).HasBankRow)
	assert.False(t, PolicyFor(CashSales).HasBankRow)

	assert.True(t, PolicyFor(CashReceipt).AmountMirrorsCredit)
	assert.True(t, PolicyFor(CashSales).AmountMirrorsCredit)
	assert.False(t, PolicyFor(CashPurchase).AmountMirrorsCredit)
}
