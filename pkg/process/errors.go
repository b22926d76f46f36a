package process

import "errors"

var errAlreadyGone = errors.New("process already gone")
