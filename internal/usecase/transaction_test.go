package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionRollsBackInReverse(t *testing.T) {
	var trail []string
	step := func(name string, err error) func(context.Context) error {
		return func(context.Context) error {
			trail = append(trail, name)
			return err
		}
	}

	txn := NewTransaction()
	txn.AddOperation("a", step("a", nil))
	txn.AddCompensation("undo_a", step("undo_a", nil))
	txn.AddOperation("b", step("b", nil))
	txn.AddCompensation("undo_b", step("undo_b", nil))
	txn.AddOperation("c", step("c", errors.New("boom")))

	err := txn.Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "operation 'c' failed")
	assert.Equal(t, []string{"a", "b", "c", "undo_b", "undo_a"}, trail)
}

func TestTransactionSuccessSkipsCompensations(t *testing.T) {
	calls := 0
	txn := NewTransaction()
	txn.AddOperation("a", func(context.Context) error { return nil })
	txn.AddCompensation("undo_a", func(context.Context) error { calls++; return nil })

	require.NoError(t, txn.Execute(context.Background()))
	assert.Zero(t, calls)
}
