package persist

import "github.com/pkg/errors"

var (
	ErrParse                = errors.New("persist: malformed save document")
	ErrInvalidDocument      = errors.New("persist: invalid save document")
	ErrNoScenes             = errors.New("persist: no scenes recorded")
	ErrNoActiveScene        = errors.New("persist: no active scene recorded")
	ErrActiveSceneNotLoaded = errors.New("persist: named active scene not loaded")
	ErrNoObjects            = errors.New("persist: no objects recorded")
	ErrSuperseded           = errors.New("persist: load superseded by a newer load")
	ErrHostClosed           = errors.New("persist: scene host closed before scenes loaded")
)
