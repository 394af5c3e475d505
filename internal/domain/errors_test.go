package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	err := CapacityError("only %d seats available", 2)
	assert.Equal(t, KindCapacity, KindOf(err))
	assert.Equal(t, "only 2 seats available", err.Error())

	wrapped := fmt.Errorf("request booking: %w", err)
	assert.Equal(t, KindCapacity, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindCapacity))

	assert.Equal(t, ErrorKind(""), KindOf(fmt.Errorf("plain failure")))
	assert.False(t, IsKind(nil, KindValidation))
}
