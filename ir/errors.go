package ir

import (
	"fmt"
)

func errOutOfRange(n, lo, hi int64) error {
	return fmt.Errorf("value %d outside permitted range [%d..%d]", n, lo, hi)
}

func errSizeOutOfRange(n, lo, hi int64) error {
	return fmt.Errorf("size %d outside permitted range [%d..%d]", n, lo, hi)
}

func errNotInValueSet() error {
	return fmt.Errorf("value not a member of the permitted value set")
}
