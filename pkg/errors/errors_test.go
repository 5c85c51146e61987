package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/modkeeper/pkg/errors"
)

func TestNewAndError(t *testing.T) {
	tests := []struct {
		name    string
		err     *errors.ModkeeperError
		wantStr string
	}{
		{
			name:    "plain",
			err:     errors.New(errors.ErrNotFound, "mod not found"),
			wantStr: "[NOT_FOUND] mod not found",
		},
		{
			name:    "formatted",
			err:     errors.Newf(errors.ErrAlreadyExists, "mod %s@%s exists", "Foo", "1.0.0"),
			wantStr: "[ALREADY_EXISTS] mod Foo@1.0.0 exists",
		},
		{
			name:    "wrapped",
			err:     errors.Wrap(fmt.Errorf("dial tcp: refused"), errors.ErrConnectivity, "catalog unreachable"),
			wantStr: "[CONNECTIVITY] catalog unreachable: dial tcp: refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStr, tt.err.Error())
			assert.NotNil(t, tt.err.Details)
		})
	}
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, errors.Wrap(nil, errors.ErrInternal, "x"))
	assert.Nil(t, errors.Wrapf(nil, errors.ErrInternal, "x %d", 1))
}

func TestIsErrorCodeWalksChain(t *testing.T) {
	inner := errors.New(errors.ErrCatalogNoData, "no releases")
	outer := errors.Wrap(inner, errors.ErrManifest, "resolve failed")

	assert.True(t, errors.IsErrorCode(outer, errors.ErrManifest))
	assert.True(t, errors.IsErrorCode(outer, errors.ErrCatalogNoData))
	assert.False(t, errors.IsErrorCode(outer, errors.ErrConnectivity))
	assert.False(t, errors.IsErrorCode(nil, errors.ErrManifest))
	assert.False(t, errors.IsErrorCode(stderrors.New("plain"), errors.ErrManifest))
}

func TestIsComparesCodes(t *testing.T) {
	err := fmt.Errorf("context: %w", errors.New(errors.ErrCycle, "a contains b"))
	assert.True(t, stderrors.Is(err, errors.New(errors.ErrCycle, "")))
	assert.False(t, stderrors.Is(err, errors.New(errors.ErrNotFound, "")))
}

func TestDetails(t *testing.T) {
	err := errors.New(errors.ErrStorage, "place failed").
		WithDetail("path", "/mods/0.17/Foo_1.0.0.zip").
		WithDetails(map[string]interface{}{"size": 42})

	details := errors.GetErrorDetails(err)
	require.NotNil(t, details)
	assert.Equal(t, "/mods/0.17/Foo_1.0.0.zip", details["path"])
	assert.Equal(t, 42, details["size"])

	assert.Nil(t, errors.GetErrorDetails(stderrors.New("plain")))
	assert.Equal(t, errors.ErrStorage, errors.GetErrorCode(err))
	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(stderrors.New("plain")))
}
