package registry_test

import (
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotpotspot/franchise-ledger/internal/mocks"
	"github.com/hotpotspot/franchise-ledger/internal/registry"
)

func TestLoadWhitelist(t *testing.T) {
	ctrl := gomock.NewController(t)
	fs := mocks.NewMockFileSystem(ctrl)
	fs.EXPECT().ReadFile("pos.json").Return([]byte(`["pos-1","pos-2"]`), nil)

	w := registry.NewPOSWhitelist(fs)
	require.NoError(t, w.Load("pos.json"))

	assert.True(t, w.IsAuthorized("pos-1"))
	assert.True(t, w.IsAuthorized("pos-2"))
	assert.False(t, w.IsAuthorized("pos-3"))
	assert.Equal(t, []string{"pos-1", "pos-2"}, w.Terminals())
}

func TestLoadWhitelistErrors(t *testing.T) {
	t.Run("read failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		fs := mocks.NewMockFileSystem(ctrl)
		fs.EXPECT().ReadFile("missing.json").Return(nil, errors.New("no such file"))

		w := registry.NewPOSWhitelist(fs)
		assert.Error(t, w.Load("missing.json"))
	})

	t.Run("malformed json keeps old set", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		fs := mocks.NewMockFileSystem(ctrl)
		fs.EXPECT().ReadFile("pos.json").Return([]byte(`["pos-1"]`), nil)
		fs.EXPECT().ReadFile("bad.json").Return([]byte(`{oops`), nil)

		w := registry.NewPOSWhitelist(fs)
		require.NoError(t, w.Load("pos.json"))
		assert.Error(t, w.Load("bad.json"))
		assert.True(t, w.IsAuthorized("pos-1"))
	})
}

func TestAddRemove(t *testing.T) {
	ctrl := gomock.NewController(t)
	w := registry.NewPOSWhitelist(mocks.NewMockFileSystem(ctrl))

	w.Add("pos-9")
	assert.True(t, w.IsAuthorized("pos-9"))

	w.Remove("pos-9")
	assert.False(t, w.IsAuthorized("pos-9"))
}
