package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsOverdue(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	open := AssetBorrow{Status: StatusBorrowed, ExpectedReturnDate: &past}
	assert.True(t, open.IsOverdue(now))

	onTime := AssetBorrow{Status: StatusBorrowed, ExpectedReturnDate: &future}
	assert.False(t, onTime.IsOverdue(now))

	noDeadline := AssetBorrow{Status: StatusBorrowed}
	assert.False(t, noDeadline.IsOverdue(now))

	// Closed loans are never overdue, whatever the dates say.
	returned := AssetBorrow{Status: StatusReturned, ExpectedReturnDate: &past}
	assert.False(t, returned.IsOverdue(now))
	lost := AssetBorrow{Status: StatusLost, ExpectedReturnDate: &past}
	assert.False(t, lost.IsOverdue(now))
}

func TestToResponseStampsOverdue(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)

	resp := AssetBorrow{Status: StatusBorrowed, ExpectedReturnDate: &past}.ToResponse(now)
	assert.True(t, resp.IsOverdue)
}

func TestBorrowable(t *testing.T) {
	assert.True(t, (&FixedAsset{Condition: ConditionGood}).Borrowable())
	assert.True(t, (&FixedAsset{Condition: ConditionNeedsRepair}).Borrowable())
	assert.False(t, (&FixedAsset{Condition: ConditionDamaged}).Borrowable())
	assert.False(t, (&FixedAsset{Condition: ConditionDisposed}).Borrowable())
}

func TestIsLowStock(t *testing.T) {
	assert.True(t, (&Material{CurrentStock: 5, MinStock: 5}).IsLowStock())
	assert.True(t, (&Material{CurrentStock: 0, MinStock: 0}).IsLowStock())
	assert.False(t, (&Material{CurrentStock: 6, MinStock: 5}).IsLowStock())
}
