package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	errorvalues "github.com/limbo/momentum/internal/error_values"
	"github.com/limbo/momentum/internal/repository"
	"github.com/limbo/momentum/pkg/entity"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	usersRepo := repository.NewUsersRepoWithConn(mock)
	query := regexp.QuoteMeta(`INSERT INTO users (name, password_hash) VALUES ($1, $2);`)
	user := &entity.User{
		Name:         "test_user",
		PasswordHash: "hash",
	}
	testCases := []struct {
		Desc         string
		Error        error
		User         *entity.User
		MockPrepFunc func()
	}{
		{
			Desc:  "successful",
			Error: nil,
			User:  user,
			MockPrepFunc: func() {
				mock.ExpectExec(query).
					WithArgs(user.Name, user.PasswordHash).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			Desc:  "unique violation",
			Error: errorvalues.ErrUserExists,
			User:  user,
			MockPrepFunc: func() {
				mock.ExpectExec(query).
					WithArgs(user.Name, user.PasswordHash).
					WillReturnError(&pgconn.PgError{
						Code: "23505",
					})
			},
		},
		{
			Desc:  "db error",
			Error: errors.New("creating user db error: db error"),
			User:  user,
			MockPrepFunc: func() {
				mock.ExpectExec(query).
					WithArgs(user.Name, user.PasswordHash).
					WillReturnError(errors.New("db error"))
			},
		},
		{
			Desc:         "nil user",
			Error:        errors.New("user is nil"),
			User:         nil,
			MockPrepFunc: func() {},
		},
	}
	ctx := context.Background()
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			tc.MockPrepFunc()
			err := usersRepo.Create(ctx, tc.User)
			if tc.Error != nil {
				assert.EqualError(t, err, tc.Error.Error())
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFindUserByName(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	usersRepo := repository.NewUsersRepoWithConn(mock)
	query := regexp.QuoteMeta(`SELECT id, name, password_hash FROM users WHERE name = $1;`)
	returnedUser := &entity.User{
		ID:           uuid.New(),
		Name:         "test_user",
		PasswordHash: "hash",
	}
	testCases := []struct {
		Desc         string
		Error        error
		UserResult   *entity.User
		MockPrepFunc func()
	}{
		{
			Desc:       "successful",
			Error:      nil,
			UserResult: returnedUser,
			MockPrepFunc: func() {
				mock.ExpectQuery(query).
					WithArgs(returnedUser.Name).
					WillReturnRows(pgxmock.NewRows([]string{"id", "name", "password_hash"}).
						AddRow(returnedUser.ID, returnedUser.Name, returnedUser.PasswordHash))
			},
		},
		{
			Desc:       "user not found",
			Error:      errorvalues.ErrUserNotFound,
			UserResult: nil,
			MockPrepFunc: func() {
				mock.ExpectQuery(query).WithArgs(returnedUser.Name).WillReturnError(pgx.ErrNoRows)
			},
		},
		{
			Desc:       "db error",
			Error:      errors.New("searching user by name error: db error"),
			UserResult: nil,
			MockPrepFunc: func() {
				mock.ExpectQuery(query).WithArgs(returnedUser.Name).WillReturnError(errors.New("db error"))
			},
		},
	}
	ctx := context.Background()
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			tc.MockPrepFunc()
			user, err := usersRepo.FindByName(ctx, returnedUser.Name)
			if tc.Error != nil {
				assert.EqualError(t, err, tc.Error.Error())
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.UserResult, user)
			}
		})
	}
}

func TestFindUserByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	usersRepo := repository.NewUsersRepoWithConn(mock)
	query := regexp.QuoteMeta(`SELECT id, name, password_hash FROM users WHERE id = $1;`)
	returnedUser := &entity.User{
		ID:           uuid.New(),
		Name:         "test_user",
		PasswordHash: "hash",
	}
	testCases := []struct {
		Desc         string
		Error        error
		UserResult   *entity.User
		MockPrepFunc func()
	}{
		{
			Desc:       "successful",
			Error:      nil,
			UserResult: returnedUser,
			MockPrepFunc: func() {
				mock.ExpectQuery(query).
					WithArgs(returnedUser.ID).
					WillReturnRows(pgxmock.NewRows([]string{"id", "name", "password_hash"}).
						AddRow(returnedUser.ID, returnedUser.Name, returnedUser.PasswordHash))
			},
		},
		{
			Desc:       "user not found",
			Error:      errorvalues.ErrUserNotFound,
			UserResult: nil,
			MockPrepFunc: func() {
				mock.ExpectQuery(query).WithArgs(returnedUser.ID).WillReturnError(pgx.ErrNoRows)
			},
		},
		{
			Desc:       "db error",
			Error:      errors.New("searching user by id error: db error"),
			UserResult: nil,
			MockPrepFunc: func() {
				mock.ExpectQuery(query).WithArgs(returnedUser.ID).WillReturnError(errors.New("db error"))
			},
		},
	}
	ctx := context.Background()
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			tc.MockPrepFunc()
			user, err := usersRepo.FindByID(ctx, returnedUser.ID)
			if tc.Error != nil {
				assert.EqualError(t, err, tc.Error.Error())
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.UserResult, user)
			}
		})
	}
}
