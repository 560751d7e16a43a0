package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTxManager_WithTx(t *testing.T) {
	t.Run("commit on success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO leases").WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		txManager := NewTxManager(db)
		err = txManager.WithTx(context.Background(), func(ctx context.Context) error {
			_, execErr := GetTx(ctx, db).ExecContext(ctx, "INSERT INTO leases (id) VALUES (1)")
			return execErr
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback on error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectBegin()
		mock.ExpectRollback()

		expectedErr := errors.New("boom")
		txManager := NewTxManager(db)
		err = txManager.WithTx(context.Background(), func(ctx context.Context) error {
			return expectedErr
		})

		assert.ErrorIs(t, err, expectedErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback failure is joined", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		rbErr := errors.New("rollback failed")
		mock.ExpectBegin()
		mock.ExpectRollback().WillReturnError(rbErr)

		expectedErr := errors.New("boom")
		txManager := NewTxManager(db)
		err = txManager.WithTx(context.Background(), func(ctx context.Context) error {
			return expectedErr
		})

		assert.ErrorIs(t, err, expectedErr)
		assert.ErrorIs(t, err, rbErr)
	})

	t.Run("begin failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		beginErr := errors.New("cannot begin")
		mock.ExpectBegin().WillReturnError(beginErr)

		called := false
		txManager := NewTxManager(db)
		err = txManager.WithTx(context.Background(), func(ctx context.Context) error {
			called = true
			return nil
		})

		assert.ErrorIs(t, err, beginErr)
		assert.False(t, called)
	})

	t.Run("rollback on panic", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectBegin()
		mock.ExpectRollback()

		txManager := NewTxManager(db)
		assert.PanicsWithValue(t, "provider exploded", func() {
			_ = txManager.WithTx(context.Background(), func(ctx context.Context) error {
				panic("provider exploded")
			})
		})
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("commit failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		commitErr := errors.New("serialization failure")
		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(commitErr)

		txManager := NewTxManager(db)
		err = txManager.WithTx(context.Background(), func(ctx context.Context) error { return nil })

		assert.ErrorIs(t, err, commitErr)
		assert.Contains(t, err.Error(), "failed to commit transaction")
	})

	t.Run("nested calls share the outer transaction", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectBegin()
		mock.ExpectCommit()

		txManager := NewTxManager(db)
		err = txManager.WithTx(context.Background(), func(ctx context.Context) error {
			outer := GetTx(ctx, db)
			return txManager.WithTx(ctx, func(inner context.Context) error {
				assert.Equal(t, outer, GetTx(inner, db))
				return nil
			})
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetTx_WithoutTransaction(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	assert.Equal(t, db, GetTx(context.Background(), db))
}
