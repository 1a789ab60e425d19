package service

import "errors"

// ErrNoADPSource is returned by Build when the service has no ADP source.
var ErrNoADPSource = errors.New("no ADP source configured")
