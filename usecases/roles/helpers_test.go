package roles

import "github.com/cockroachdb/errors"

var assertError = errors.New("unexpected error")
