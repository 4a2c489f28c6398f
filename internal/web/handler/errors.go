package handler

import "errors"

// ErrNilDeps is returned by Init when the app or a dependency is missing.
var ErrNilDeps = errors.New(ErrNilDepsFatalLogMsg)
