//go:build cgo || windows

// The ODBC driver needs cgo on unix (it links against unixODBC), so its
// registration lives behind a build constraint; Windows uses syscalls and
// always gets it.
package sqlexec

import (
	_ "github.com/alexbrainman/odbc" // access, sqlce, oracle, firebird
)
