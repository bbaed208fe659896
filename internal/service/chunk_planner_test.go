package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mib = int64(1 << 20)

func TestPlanChunks_RemainderPart(t *testing.T) {
	plan, err := PlanChunks(12*mib, 5*mib, 10000)
	require.NoError(t, err)

	assert.Equal(t, []ChunkPart{
		{PartNumber: 1, Offset: 0, Length: 5 * mib},
		{PartNumber: 2, Offset: 5 * mib, Length: 5 * mib},
		{PartNumber: 3, Offset: 10 * mib, Length: 2 * mib},
	}, plan)
}

func TestPlanChunks_ExactMultiple(t *testing.T) {
	plan, err := PlanChunks(10*mib, 5*mib, 10000)
	require.NoError(t, err)

	require.Len(t, plan, 2)
	assert.Equal(t, 5*mib, plan[0].Length)
	assert.Equal(t, 5*mib, plan[1].Length)
	assert.Equal(t, 5*mib, plan[1].Offset)
}

func TestPlanChunks_SizeEqualsPartSize(t *testing.T) {
	plan, err := PlanChunks(5*mib, 5*mib, 10000)
	require.NoError(t, err)

	assert.Equal(t, []ChunkPart{{PartNumber: 1, Offset: 0, Length: 5 * mib}}, plan)
}

func TestPlanChunks_SingleByte(t *testing.T) {
	plan, err := PlanChunks(1, 5*mib, 10000)
	require.NoError(t, err)

	assert.Equal(t, []ChunkPart{{PartNumber: 1, Offset: 0, Length: 1}}, plan)
}

func TestPlanChunks_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		totalSize int64
		partSize  int64
		maxParts  int
		want      error
	}{
		{"empty file", 0, 5 * mib, 10000, ErrEmptyFile},
		{"negative size", -1, 5 * mib, 10000, ErrEmptyFile},
		{"zero part size", 10, 0, 10000, ErrInvalidPartSize},
		{"one part over the limit", 3*5*mib + 1, 5 * mib, 3, ErrTooManyParts},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := PlanChunks(tt.totalSize, tt.partSize, tt.maxParts)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, plan)
		})
	}
}

func TestPlanChunks_AtPartLimit(t *testing.T) {
	plan, err := PlanChunks(3*5*mib, 5*mib, 3)
	require.NoError(t, err)
	assert.Len(t, plan, 3)
}

func TestPlanChunks_NoLimit(t *testing.T) {
	plan, err := PlanChunks(100, 1, 0)
	require.NoError(t, err)
	assert.Len(t, plan, 100)
}

func TestPlanChunks_CoversRangeContiguously(t *testing.T) {
	for _, partSize := range []int64{1, 3, 7, 64} {
		for totalSize := int64(1); totalSize <= 300; totalSize++ {
			plan, err := PlanChunks(totalSize, partSize, 0)
			require.NoError(t, err)

			wantParts := (totalSize + partSize - 1) / partSize
			require.Len(t, plan, int(wantParts), "size=%d part=%d", totalSize, partSize)

			var next int64
			for i, p := range plan {
				assert.Equal(t, i+1, p.PartNumber)
				assert.Equal(t, next, p.Offset)
				assert.Positive(t, p.Length)
				if i < len(plan)-1 {
					assert.Equal(t, partSize, p.Length)
				} else {
					assert.LessOrEqual(t, p.Length, partSize)
				}
				next += p.Length
			}
			assert.Equal(t, totalSize, next)
		}
	}
}
