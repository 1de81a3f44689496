package xmlstream

import "io"

// CountingReader wraps a reader and tracks how many bytes have been
// consumed. The count is best-effort for progress display: the scanner
// reads ahead in chunks, so it can run slightly past the last event.
type CountingReader struct {
	r io.Reader
	n int64
}

func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{r: r}
}

func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// BytesRead returns the number of bytes consumed so far.
func (c *CountingReader) BytesRead() int64 {
	return c.n
}
