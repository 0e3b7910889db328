package typeid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAndValidate(t *testing.T) {
	tests := []struct {
		name   string
		gen    func() string
		prefix string
	}{
		{"user", NewUserID, PrefixUser},
		{"project", NewProjectID, PrefixProject},
		{"snapshot", NewSnapshotID, PrefixSnapshot},
		{"op", NewOpID, PrefixOp},
		{"object", NewObjectID, PrefixObject},
		{"asset", NewAssetID, PrefixAsset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := tt.gen()
			assert.True(t, strings.HasPrefix(id, tt.prefix+"_"))
			assert.NoError(t, Validate(id, tt.prefix))
			assert.NotEqual(t, id, tt.gen())
		})
	}
}

func TestValidateRejects(t *testing.T) {
	assert.ErrorIs(t, Validate(NewUserID(), PrefixProject), ErrInvalid)
	assert.ErrorIs(t, Validate("user_nope", PrefixUser), ErrInvalid)
	assert.ErrorIs(t, Validate("", PrefixUser), ErrInvalid)
}
