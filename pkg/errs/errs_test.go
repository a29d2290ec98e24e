package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestFromDB(t *testing.T) {
	require.NoError(t, FromDB(nil, "post"))

	err := FromDB(gorm.ErrRecordNotFound, "post")
	require.ErrorIs(t, err, ErrNotFound)
	require.Equal(t, "post not found", err.Error())

	require.ErrorIs(t, FromDB(gorm.ErrDuplicatedKey, "like"), ErrConflict)
	require.ErrorIs(t, FromDB(gorm.ErrForeignKeyViolated, "comment"), ErrInvalid)

	boom := errors.New("boom")
	err = FromDB(boom, "order")
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, ErrNotFound)
}

func TestHelpersWrapSentinels(t *testing.T) {
	require.ErrorIs(t, Invalid("bad %s", "input"), ErrInvalid)
	require.ErrorIs(t, Forbidden("nope"), ErrForbidden)
	require.ErrorIs(t, Conflict("dup"), ErrConflict)
	require.Equal(t, "invalid request: bad input", Invalid("bad %s", "input").Error())
}
