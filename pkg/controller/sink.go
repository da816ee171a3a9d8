package controller

import (
	"os"
	"path/filepath"
)

// Sink receives finished captures for saving. It is the explicit
// save-location step of a cycle: the controller offers every image and
// the sink decides where it lands.
type Sink interface {
	Offer(image []byte, filename string) error
}

// FolderSink writes captures into a folder, creating it on demand.
type FolderSink struct {
	Dir string
}

func (s FolderSink) Offer(image []byte, filename string) error {
	if len(image) == 0 {
		return nil
	}

	if err := os.MkdirAll(s.Dir, os.ModePerm); err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(s.Dir, filename), image, 0o644)
}
