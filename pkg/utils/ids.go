package utils

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

type IDGenerator func() string

func NewUUID() string {
	return uuid.NewString()
}

// SequentialIDs returns a generator producing prefix-1, prefix-2, ...
func SequentialIDs(prefix string) IDGenerator {
	var n atomic.Int64
	return func() string {
		return fmt.Sprintf("%s-%d", prefix, n.Add(1))
	}
}
