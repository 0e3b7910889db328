package typeid

import (
	"errors"
	"fmt"

	"go.jetify.com/typeid/v2"
)

const (
	PrefixUser     = "user"
	PrefixProject  = "proj"
	PrefixSnapshot = "snap"
	PrefixOp       = "op"
	PrefixObject   = "obj"
	PrefixAsset    = "asset"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid id")

func New(prefix string) string {
	id := typeid.MustGenerate(prefix)
	return id.String()
}

func NewUserID() string     { return New(PrefixUser) }
func NewProjectID() string  { return New(PrefixProject) }
func NewSnapshotID() string { return New(PrefixSnapshot) }
func NewOpID() string       { return New(PrefixOp) }
func NewObjectID() string   { return New(PrefixObject) }
func NewAssetID() string    { return New(PrefixAsset) }

// Validate checks that id parses and carries expectedPrefix.
func Validate(id, expectedPrefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalid, id, err)
	}
	if parsed.Prefix() != expectedPrefix {
		return fmt.Errorf("%w: expected prefix %q but got %q in id %q", ErrInvalid, expectedPrefix, parsed.Prefix(), id)
	}
	return nil
}
