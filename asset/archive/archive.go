// Package archive persists built acceleration structures as zip files.
//
// An archive contains two entries: the raw acceleration structure buffer
// and the gob-encoded build statistics.
package archive

import (
	"archive/zip"
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/achilleasa/lbvh/accel/layout"
	"github.com/achilleasa/lbvh/accel/lbvh"
	"github.com/achilleasa/lbvh/asset"
	"github.com/achilleasa/lbvh/log"
)

const (
	bufferFile = "accel.bin"
	statsFile  = "stats.bin"
)

var (
	ErrMissingEntry  = errors.New("archive: missing entry")
	ErrCorruptBuffer = errors.New("archive: corrupt acceleration structure")
)

// A built acceleration structure together with its build statistics.
type Archive struct {
	Buffer *layout.Buffer
	Stats  *lbvh.Stats
}

// Write the archive to a zip file.
func WriteFile(filename string, a *Archive) error {
	logger := log.New("zip writer")
	logger.Noticef("writing acceleration structure to %s", filename)
	start := time.Now()

	f, err := os.Create(filename)
	if err != nil {
		return err
	}

	if err = Write(f, a); err != nil {
		f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}

	logger.Noticef("wrote %d bytes in %d ms", a.Buffer.Size(), time.Since(start).Nanoseconds()/1e6)
	return nil
}

// Write the archive as a zip stream.
func Write(w io.Writer, a *Archive) error {
	if a.Buffer == nil {
		return fmt.Errorf("%w: %s", ErrMissingEntry, bufferFile)
	}

	zw := zip.NewWriter(w)

	cw, err := zw.Create(bufferFile)
	if err != nil {
		return err
	}
	if _, err = cw.Write(a.Buffer.Bytes()); err != nil {
		return err
	}

	if a.Stats != nil {
		cw, err = zw.Create(statsFile)
		if err != nil {
			return err
		}
		if err = gob.NewEncoder(cw).Encode(a.Stats); err != nil {
			return err
		}
	}

	return zw.Close()
}

// Read an archive from a zip file.
func ReadFile(filename string) (*Archive, error) {
	res, err := asset.NewResource(filename, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	return Read(res)
}

// Read an archive from a resource. The stored buffer is checked for a
// stamped header whose recorded size matches the stored data.
func Read(res *asset.Resource) (*Archive, error) {
	logger := log.New("zip reader")
	logger.Noticef(`loading acceleration structure from "%s"`, res.Path())
	start := time.Now()

	// zip needs an io.ReaderAt so buffer the whole file in memory
	data, err := io.ReadAll(res)
	if err != nil {
		return nil, err
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	a := &Archive{}
	for _, f := range zr.File {
		switch f.Name {
		case bufferFile, statsFile:
		default:
			logger.Warningf("unknown file %s in archive; skipping", f.Name)
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, err
		}

		switch f.Name {
		case bufferFile:
			var raw []byte
			raw, err = io.ReadAll(rc)
			a.Buffer = layout.WrapBuffer(raw)
		case statsFile:
			a.Stats = &lbvh.Stats{}
			err = gob.NewDecoder(rc).Decode(a.Stats)
		}
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("archive: failed to load %s: %w", f.Name, err)
		}
	}

	if a.Buffer == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingEntry, bufferFile)
	}
	if err = checkBuffer(a.Buffer); err != nil {
		return nil, err
	}

	logger.Noticef("loaded %d bytes in %d ms", a.Buffer.Size(), time.Since(start).Nanoseconds()/1e6)
	return a, nil
}

func checkBuffer(buf *layout.Buffer) error {
	if buf.Size() < layout.HeaderSize {
		return fmt.Errorf("%w: %d bytes is smaller than the header", ErrCorruptBuffer, buf.Size())
	}

	hdr := buf.Header()
	if !hdr.IsStamped() {
		return fmt.Errorf("%w: header has no root", ErrCorruptBuffer)
	}
	if hdr.Size() != uint64(buf.Size()) {
		return fmt.Errorf("%w: header records %d bytes; archive holds %d", ErrCorruptBuffer, hdr.Size(), buf.Size())
	}
	return nil
}
