package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostgresMock(t *testing.T) (*Postgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	s := NewPostgres(sqlx.NewDb(db, "postgres"))
	t.Cleanup(func() { _ = db.Close() })
	return s, mock
}

func TestPostgresStoreGet(t *testing.T) {
	s, mock := newPostgresMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM kv_entries WHERE key = $1")).
		WithArgs("edu_notes_files").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`{"version":1,"items":[]}`)))

	value, found, err := s.Get(context.Background(), "edu_notes_files")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"version":1,"items":[]}`, string(value))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreGetMissing(t *testing.T) {
	s, mock := newPostgresMock(t)
	mock.ExpectQuery("SELECT value FROM kv_entries").
		WithArgs("edu_notes_files").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	_, found, err := s.Get(context.Background(), "edu_notes_files")
	require.NoError(t, err)
	assert.False(t, found)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreSetUpserts(t *testing.T) {
	s, mock := newPostgresMock(t)
	mock.ExpectExec("INSERT INTO kv_entries").
		WithArgs("edu_notes_files", []byte("[]")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Set(context.Background(), "edu_notes_files", []byte("[]")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreErrors(t *testing.T) {
	s, mock := newPostgresMock(t)
	mock.ExpectExec("DELETE FROM kv_entries").
		WithArgs("edu_notes_files").
		WillReturnError(errors.New("connection reset"))

	err := s.Delete(context.Background(), "edu_notes_files")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete kv entry edu_notes_files")
	require.NoError(t, mock.ExpectationsWereMet())
}
