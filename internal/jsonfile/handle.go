package jsonfile

import (
	"fmt"
	"io"
)

// Handle is the duplex byte channel a Session persists through. *os.File
// satisfies it. The Session takes ownership on a successful Open and closes
// the handle on Close.
type Handle interface {
	io.ReadWriteSeeker
	io.Closer
	Truncate(size int64) error
	Sync() error
}

// handleSize reports the current size of h, restoring the read offset.
func handleSize(h Handle) (int64, error) {
	pos, err := h.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	size, err := h.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := h.Seek(pos, io.SeekStart); err != nil {
		return 0, err
	}
	return size, nil
}

// readAll reads the full content of h from the start.
func readAll(h Handle) ([]byte, error) {
	if _, err := h.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return io.ReadAll(h)
}

// overwrite replaces the full content of h with data and flushes it to
// stable storage.
func overwrite(h Handle, data []byte) error {
	if _, err := h.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("seeking to start: %w", err)
	}
	if err := h.Truncate(0); err != nil {
		return fmt.Errorf("truncating: %w", err)
	}
	if _, err := h.Write(data); err != nil {
		return fmt.Errorf("writing document: %w", err)
	}
	if err := h.Sync(); err != nil {
		return fmt.Errorf("syncing: %w", err)
	}
	return nil
}
