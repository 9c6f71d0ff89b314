package fingerprint

import (
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sdejongh/dupnorris/pkg/ratelimit"
	"github.com/sdejongh/dupnorris/pkg/storage"
)

// DefaultBufferSize is the read buffer used when streaming file content
const DefaultBufferSize = 64 * 1024

// Hasher computes MD5 content digests by streaming file bytes
type Hasher struct {
	bufferSize int
	bufferPool *sync.Pool
	limiter    *ratelimit.Limiter // nil means unthrottled
}

// NewHasher creates a hasher. limiter may be nil.
func NewHasher(bufferSize int, limiter *ratelimit.Limiter) *Hasher {
	if bufferSize < 4096 {
		bufferSize = 4096
	}
	return &Hasher{
		bufferSize: bufferSize,
		limiter:    limiter,
		bufferPool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, bufferSize)
				return &buf
			},
		},
	}
}

// Hash digests the file at path inside backend
func (h *Hasher) Hash(ctx context.Context, backend storage.Backend, path string) (string, error) {
	reader, err := backend.Open(ctx, path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	return h.digest(ctx, reader)
}

// HashFile digests the file at an absolute path
func (h *Hasher) HashFile(ctx context.Context, absPath string) (string, error) {
	reader, err := os.Open(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	return h.digest(ctx, reader)
}

func (h *Hasher) digest(ctx context.Context, reader io.ReadCloser) (string, error) {
	reader = h.limiter.Wrap(ctx, reader)
	defer reader.Close()

	hasher := md5.New()

	bufPtr := h.bufferPool.Get().(*[]byte)
	buffer := *bufPtr
	defer h.bufferPool.Put(bufPtr)

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		n, err := reader.Read(buffer)
		if n > 0 {
			hasher.Write(buffer[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
	}

	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}
