// Package store handles persistence of the wage setting and shift history.
package store

import (
	"fmt"
	"strings"

	"github.com/verte-zerg/shiftmeter/internal/history"
)

// Backend kinds accepted by Open.
const (
	KindSQLite = "sqlite"
	KindYAML   = "yaml"
)

// Open opens the backend of the given kind at path.
func Open(kind, path string) (history.Backend, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindSQLite:
		st, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return st, nil
	case KindYAML:
		st, err := OpenYAML(path)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q (expected %s or %s)", kind, KindSQLite, KindYAML)
	}
}

// Ext returns the default file extension for a backend kind.
func Ext(kind string) string {
	if strings.ToLower(strings.TrimSpace(kind)) == KindYAML {
		return ".yaml"
	}
	return ".db"
}
