package dal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/virtualobs/voclient"
)

// ProgressFunc observes download progress. total is -1 when the size is
// unknown. Called from multiple goroutines during a chunked download.
type ProgressFunc func(written, total int64)

// DownloadOption configures a Download call.
type DownloadOption func(*downloadConfig)

type downloadConfig struct {
	chunks   int
	progress ProgressFunc
}

// WithChunks sets how many parallel range requests a chunked download uses.
// Default 4. Only takes effect when the server advertises byte-range support
// and a known length.
func WithChunks(n int) DownloadOption {
	return func(c *downloadConfig) {
		if n > 0 {
			c.chunks = n
		}
	}
}

// WithProgress registers a progress callback.
func WithProgress(fn ProgressFunc) DownloadOption {
	return func(c *downloadConfig) { c.progress = fn }
}

// progressCounter aggregates bytes written by concurrent chunk workers. The
// lock is the only shared state in the download path.
type progressCounter struct {
	mu      sync.Mutex
	written int64
	total   int64
	fn      ProgressFunc
}

func (p *progressCounter) add(n int64) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.written += n
	written := p.written
	p.mu.Unlock()
	if p.fn != nil {
		p.fn(written, p.total)
	}
}

// Download fetches an access URL to dest through the session. When the
// server advertises byte-range support and a known content length, the body
// is fetched in parallel range chunks written in place; otherwise it streams
// sequentially.
func Download(ctx context.Context, sess *voclient.Session, rawurl, dest string, opts ...DownloadOption) error {
	cfg := downloadConfig{chunks: 4}
	for _, opt := range opts {
		opt(&cfg)
	}

	head, err := sess.Head(ctx, rawurl)
	if err != nil {
		return err
	}
	head.Body.Close()

	size := int64(-1)
	if cl := head.Header.Get("Content-Length"); cl != "" {
		if v, err := strconv.ParseInt(cl, 10, 64); err == nil {
			size = v
		}
	}
	ranged := head.StatusCode == http.StatusOK && head.Header.Get("Accept-Ranges") == "bytes" && size > 0

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("dal: create %s: %w", dest, err)
	}
	defer f.Close()

	counter := &progressCounter{total: size, fn: cfg.progress}

	// A payload smaller than the chunk count would produce empty ranges;
	// stream it instead.
	if !ranged || cfg.chunks <= 1 || size < int64(cfg.chunks) {
		return downloadStream(ctx, sess, rawurl, f, counter)
	}
	return downloadChunked(ctx, sess, rawurl, f, size, cfg.chunks, counter)
}

func downloadStream(ctx context.Context, sess *voclient.Session, rawurl string, f *os.File, counter *progressCounter) error {
	resp, err := sess.Get(ctx, rawurl, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("dal: download: service returned %s", resp.Status)
	}
	_, err = io.Copy(f, &countingReader{r: resp.Body, counter: counter})
	if err != nil {
		return fmt.Errorf("dal: download: %w", err)
	}
	return nil
}

func downloadChunked(ctx context.Context, sess *voclient.Session, rawurl string, f *os.File, size int64, chunks int, counter *progressCounter) error {
	if err := f.Truncate(size); err != nil {
		return fmt.Errorf("dal: download: %w", err)
	}

	chunkSize := size / int64(chunks)
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < chunks; i++ {
		start := int64(i) * chunkSize
		end := start + chunkSize - 1
		if i == chunks-1 {
			end = size - 1
		}
		g.Go(func() error {
			resp, err := sess.Get(ctx, rawurl, nil,
				voclient.WithHeader("Range", fmt.Sprintf("bytes=%d-%d", start, end)))
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusPartialContent {
				return fmt.Errorf("dal: download: range request returned %s", resp.Status)
			}
			_, err = io.Copy(&sectionWriter{f: f, off: start, counter: counter}, resp.Body)
			return err
		})
	}
	return g.Wait()
}

type countingReader struct {
	r       io.Reader
	counter *progressCounter
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.counter.add(int64(n))
	}
	return n, err
}

type sectionWriter struct {
	f       *os.File
	off     int64
	counter *progressCounter
}

func (w *sectionWriter) Write(p []byte) (int, error) {
	n, err := w.f.WriteAt(p, w.off)
	w.off += int64(n)
	if n > 0 {
		w.counter.add(int64(n))
	}
	return n, err
}
