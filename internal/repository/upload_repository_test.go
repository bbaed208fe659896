package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeBitmap(t *testing.T) {
	// 0b1010_0000, 0b0000_0001 -> 位 0、2、15 被置位
	bitmap := []byte{0xA0, 0x01}

	assert.Equal(t, []int{1, 3, 16}, decodeBitmap(bitmap, 16))
	assert.Equal(t, []int{1, 3}, decodeBitmap(bitmap, 10), "bits beyond totalParts are ignored")
	assert.Equal(t, []int{}, decodeBitmap(nil, 4))
}
