package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEqualPtr(t *testing.T) {
	assert.True(t, EqualPtr[int](nil, nil))
	assert.False(t, EqualPtr(Ptr(1), nil))
	assert.True(t, EqualPtr(Ptr(1), Ptr(1)))
	assert.False(t, EqualPtr(Ptr(1), Ptr(2)))
}

func TestStringOrNil(t *testing.T) {
	assert.Nil(t, StringOrNil("   "))
	assert.Equal(t, "x", *StringOrNil(" x "))
	assert.Equal(t, 0, OrZero[int](nil))
}
