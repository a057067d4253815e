package memory

import "errors"

var ErrKeyNotSet = errors.New("storage key is not set")
