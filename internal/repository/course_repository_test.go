package repository

import (
	"context"
	"database/sql"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/admissions-crm-api/internal/models"
)

func TestCourseCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery("INSERT INTO courses").
		WithArgs("MBA", "Two years", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	c := &models.Course{Name: "MBA", Description: "Two years"}
	require.NoError(t, repo.Create(context.Background(), c))
	assert.Equal(t, int64(3), c.ID)
}

func TestCourseUpdateMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec("UPDATE courses SET").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Course{ID: 42, Name: "X"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestCustomerCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCustomerRepository(db)

	mock.ExpectQuery("INSERT INTO customers").
		WithArgs("Acme", "acme@example.com", int64(1), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(8))

	c := &models.Customer{Name: "Acme", Email: "acme@example.com", AddedByUserID: 1}
	require.NoError(t, repo.Create(context.Background(), c))
	assert.Equal(t, int64(8), c.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
