package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
)

// maxLineBytes bounds one zerolog entry.
const maxLineBytes = 1 << 20

// Read returns the last maxLines lines of the foodbridge.log file at path,
// oldest first. maxLines <= 0 returns every line. A log that has not been
// created yet reads as empty.
func Read(path string, maxLines int) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer func() { _ = f.Close() }()

	w := newWindow(maxLines)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64<<10), maxLineBytes)
	for sc.Scan() {
		w.push(sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read log %s: %w", path, err)
	}
	return w.lines(), nil
}

// window keeps the newest size lines. size <= 0 keeps everything.
type window struct {
	size int
	buf  []string
	next int // slot the next push overwrites once buf is full
}

func newWindow(size int) *window {
	if size <= 0 {
		return &window{}
	}
	return &window{size: size, buf: make([]string, 0, size)}
}

func (w *window) push(line string) {
	if w.size <= 0 || len(w.buf) < w.size {
		w.buf = append(w.buf, line)
		return
	}
	w.buf[w.next] = line
	w.next = (w.next + 1) % w.size
}

func (w *window) lines() []string {
	if w.next == 0 {
		return w.buf
	}
	out := make([]string, 0, len(w.buf))
	out = append(out, w.buf[w.next:]...)
	return append(out, w.buf[:w.next]...)
}
