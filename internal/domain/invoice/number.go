package invoice

import (
	"fmt"
	"math/rand/v2"
)

// NewNumber generates an invoice number of the form INV-##### with a
// 5-digit zero-padded random suffix. Uniqueness is not guaranteed here;
// collision handling belongs to the persistence layer.
func NewNumber() string {
	return fmt.Sprintf("INV-%05d", rand.IntN(100000))
}
