package dialect

import (
	"fmt"
	"strings"

	"github.com/omnidal-io/omnidal/pkg/apperrors"
)

// providerMarkers is the fixed, ordered list of provider name fragments
// checked against the provider hint and, failing that, the connection
// string. Order matters: the first match wins, so fragments that embed
// other fragments come first ("mysqlclient" contains "sqlclient",
// "sqlserverce" is the compact-edition provider, not "sqlce").
var providerMarkers = []struct {
	fragment string
	dialect  string
}{
	{"mysql", MySQL},
	{"sqlserverce", SqlCe},
	{"sqlce", SqlCe},
	{"sqlclient", SQLServer},
	{"sqlite", SQLite},
	{"npgsql", PostgreSQL},
	{"postgresql", PostgreSQL},
	{"oracleclient", Oracle},
	{"jet.oledb", Access},
	{"access", Access},
	{"firebird", Firebird},
}

// connStringMarkers supplements the provider list with fragments that only
// show up in DSNs.
var connStringMarkers = []struct {
	fragment string
	dialect  string
}{
	{"sqlserver://", SQLServer},
	{"server=tcp:", SQLServer},
	{"postgres://", PostgreSQL},
	{"oracle", Oracle},
	{".sqlite", SQLite},
	{".db3", SQLite},
	{".mdb", Access},
	{".accdb", Access},
	{".sdf", SqlCe},
	{".fdb", Firebird},
}

// Resolve maps a provider hint and connection string to a dialect.
//
// A non-empty hint is authoritative: it must match a known provider marker
// or resolution fails. Without a hint, the connection string itself is
// matched against the same markers, defaulting to Access when nothing
// matches (file-path DSNs historically meant Jet databases).
func Resolve(providerHint, connString string) (Dialect, error) {
	if providerHint != "" {
		hint := strings.ToLower(providerHint)
		for _, m := range providerMarkers {
			if strings.Contains(hint, m.fragment) {
				return mustGet(m.dialect), nil
			}
		}
		return nil, fmt.Errorf("%w: provider %q", apperrors.ErrUnrecognizedProvider, providerHint)
	}

	cs := strings.ToLower(connString)
	for _, m := range providerMarkers {
		if strings.Contains(cs, m.fragment) {
			return mustGet(m.dialect), nil
		}
	}
	for _, m := range connStringMarkers {
		if strings.Contains(cs, m.fragment) {
			return mustGet(m.dialect), nil
		}
	}
	return mustGet(Access), nil
}

// ForName returns the dialect for an explicit dialect override.
func ForName(name string) (Dialect, error) {
	if d, ok := Get(name); ok {
		return d, nil
	}
	return nil, fmt.Errorf("%w: dialect %q", apperrors.ErrUnrecognizedProvider, name)
}

func mustGet(name string) Dialect {
	d, ok := dialects[name]
	if !ok {
		panic("dialect: marker references unregistered dialect " + name)
	}
	return d
}
