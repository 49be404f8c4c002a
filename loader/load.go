package loader

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Ramzeth/asnranger"
)

const mmdbExt = ".mmdb"

// LoadFile builds a table from a local dataset. Files ending in .mmdb are
// read as MaxMind databases, everything else as (optionally gzipped) TSV.
func LoadFile(path string) (*asnranger.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return loadBytes(path, data)
}

func loadBytes(name string, data []byte) (*asnranger.Table, error) {
	if strings.EqualFold(filepath.Ext(name), mmdbExt) {
		records, err := ParseMMDB(data)
		if err != nil {
			return nil, err
		}
		return build(records)
	}
	table, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filepath.Base(name), err)
	}
	return table, nil
}
