package service

import "errors"

var (
	// ErrEmptyFile 表示上传的文件长度为 0。
	ErrEmptyFile = errors.New("文件为空")
	// ErrTooManyParts 表示按当前分片大小切分后分片数超过上限。
	ErrTooManyParts = errors.New("分片数量超过上限")
	// ErrInvalidPartSize 表示分片大小配置不合法。
	ErrInvalidPartSize = errors.New("分片大小必须大于 0")
)

// ChunkPart 描述一个分片在原文件中的字节范围，PartNumber 从 1 开始。
type ChunkPart struct {
	PartNumber int
	Offset     int64
	Length     int64
}

// PlanChunks 把 [0, totalSize) 按 partSize 切分为连续不重叠的分片。
// 只有最后一个分片可能小于 partSize；totalSize 恰为 partSize 的整数倍时不会产生长度为 0 的尾分片。
// maxParts <= 0 表示不限制分片数。
func PlanChunks(totalSize, partSize int64, maxParts int) ([]ChunkPart, error) {
	if partSize <= 0 {
		return nil, ErrInvalidPartSize
	}
	if totalSize <= 0 {
		return nil, ErrEmptyFile
	}

	chunkCount := totalSize/partSize + 1
	lastChunkSize := totalSize % partSize
	if lastChunkSize == 0 {
		lastChunkSize = partSize
		chunkCount--
	}
	if maxParts > 0 && chunkCount > int64(maxParts) {
		return nil, ErrTooManyParts
	}

	plan := make([]ChunkPart, chunkCount)
	for i := range plan {
		length := partSize
		if int64(i) == chunkCount-1 {
			length = lastChunkSize
		}
		plan[i] = ChunkPart{
			PartNumber: i + 1,
			Offset:     int64(i) * partSize,
			Length:     length,
		}
	}
	return plan, nil
}
