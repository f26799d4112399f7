package iofio

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestError_Error_IncludesOpAndPath(t *testing.T) {
	err := osError("read", "/tmp/foo", errors.New("permission denied"))

	var e *Error
	require.True(t, errors.As(err, &e))
	require.Equal(t, KindOS, e.Kind)
	require.Contains(t, err.Error(), "read")
	require.Contains(t, err.Error(), "/tmp/foo")
}

func TestError_Error_OmitsEmptyPath(t *testing.T) {
	err := preconditionFailed("sync", errors.New("upstream failed"))
	require.NotContains(t, err.Error(), "  ")
}

func TestIsKind(t *testing.T) {
	err := invalidArgument("dir", "", errors.New("empty path"))
	require.True(t, IsKind(err, KindInvalidArgument))
	require.False(t, IsKind(err, KindOS))
}

func TestAsOSError(t *testing.T) {
	err := osError("rmdir", "/a/b", ErrNotExist)

	e, ok := AsOSError(err)
	require.True(t, ok)
	require.Equal(t, "/a/b", e.Path)
	require.ErrorIs(t, e.Unwrap(), ErrNotExist)
}

func TestTaggedWithOp_PreservesOrigin(t *testing.T) {
	base := errors.New("disk full")
	tagged := taggedWithOp(base, OpID(7), VerbWrite)

	id, verb, ok := ExtractOriginOp(tagged)
	require.True(t, ok)
	require.Equal(t, OpID(7), id)
	require.Equal(t, VerbWrite, verb)
}

func TestTaggedWithOp_DoesNotRetagAlreadyTaggedError(t *testing.T) {
	base := errors.New("disk full")
	tagged := taggedWithOp(base, OpID(1), VerbWrite)
	retagged := taggedWithOp(tagged, OpID(2), VerbRead)

	id, verb, ok := ExtractOriginOp(retagged)
	require.True(t, ok)
	require.Equal(t, OpID(1), id)
	require.Equal(t, VerbWrite, verb)
}

func TestTaggedWithOp_NilErrorStaysNil(t *testing.T) {
	require.Nil(t, taggedWithOp(nil, OpID(1), VerbRead))
}
