package gonumext

import "errors"

var errFactorization = errors.New("gonumext: dense factorization failed")
