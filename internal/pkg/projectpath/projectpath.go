package projectpath

import (
	"path/filepath"
	"runtime"
)

var (
	_, b, _, _ = runtime.Caller(0)

	// Root is the repository root, resolved relative to this source file.
	Root = filepath.Join(filepath.Dir(b), "../../..")
)
