package catalog

import (
	"os"

	"github.com/BurntSushi/toml"

	lenserr "github.com/matzehuels/lens/pkg/errors"
)

// fileFormat is the on-disk TOML layout:
//
//	[[assets]]
//	id = "asset-123"
//	technical_name = "gold.cust_360_master"
//	friendly_name = "Customer 360 Gold Master"
//	domain = "Sales & Marketing"
//	type = "Table"
//
//	[assets.lineage]
//	focal = "this_asset"
//
//	[[assets.lineage.nodes]]
//	id = "this_asset"
//	name = "gold.cust_360_master"
//	type = "Table"
//
//	[[assets.lineage.links]]
//	source = "stg_cust"
//	target = "this_asset"
type fileFormat struct {
	Assets []Asset `toml:"assets"`
}

// LoadFile reads a TOML catalog.
func LoadFile(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, lenserr.Wrap(lenserr.ErrCodeNotFound, err, "read catalog %s", path)
	}
	return Parse(data)
}

// Parse decodes a TOML catalog. Unknown keys are rejected so typos in field
// names surface instead of silently producing empty lineage.
func Parse(data []byte) (*Static, error) {
	var f fileFormat
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, lenserr.Wrap(lenserr.ErrCodeInvalidInput, err, "parse catalog")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, lenserr.New(lenserr.ErrCodeInvalidInput, "unknown catalog key %q", undecoded[0].String())
	}
	return NewStatic(f.Assets)
}
