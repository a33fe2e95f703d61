package webhook

import "errors"

// ErrInvalidSignature fails a delivery closed: the payload never reaches
// state-mutating code and the provider gets a 401.
var ErrInvalidSignature = errors.New("webhook: invalid signature")
