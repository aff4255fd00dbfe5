package vox

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
)

// ArchiveCodec is the compression applied to an archive's content section.
type ArchiveCodec uint8

const (
	CodecNone ArchiveCodec = 0
	CodecZlib ArchiveCodec = 1
	CodecZstd ArchiveCodec = 2
	CodecS2   ArchiveCodec = 3
)

var codecNames = map[string]ArchiveCodec{"none": CodecNone, "zlib": CodecZlib, "zstd": CodecZstd, "s2": CodecS2}

// ParseCodec maps a config name to a codec.
func ParseCodec(name string) (ArchiveCodec, error) {
	c, ok := codecNames[name]
	if !ok {
		return 0, fmt.Errorf("unknown archive codec %q", name)
	}
	return c, nil
}

// ArchiveLayout selects how entries are laid out in the content section.
type ArchiveLayout uint8

const (
	// LayoutRaw stores every entry's bytes back to back.
	LayoutRaw ArchiveLayout = 0
	// LayoutCDC stores a dictionary of content-defined chunks shared by all
	// entries, and each entry as a list of chunk references.
	LayoutCDC ArchiveLayout = 1
)

// ParseLayout maps a config name to a layout.
func ParseLayout(name string) (ArchiveLayout, error) {
	switch name {
	case "raw", "":
		return LayoutRaw, nil
	case "cdc":
		return LayoutCDC, nil
	}
	return 0, fmt.Errorf("unknown archive layout %q", name)
}

const (
	archiveMagic   = "VOXARC"
	archiveVersion = 1

	cdcTarget = 4096
	cdcMin    = 2048
	cdcMax    = 16384
)

var ErrArchive = errors.New("vox: invalid archive")

// ArchiveEntry is one named file inside an archive.
type ArchiveEntry struct {
	Name string
	Data []byte
}

// Archive bundles several files, usually .vox documents.
type Archive struct {
	Entries []ArchiveEntry
}

// Marshal encodes the archive. Entry names must be unique.
func (a *Archive) Marshal(layout ArchiveLayout, codec ArchiveCodec) ([]byte, error) {
	seen := make(map[string]bool, len(a.Entries))
	for _, e := range a.Entries {
		if seen[e.Name] {
			return nil, fmt.Errorf("%w: duplicate entry %q", ErrArchive, e.Name)
		}
		seen[e.Name] = true
	}

	content := []byte{byte(layout)}
	switch layout {
	case LayoutRaw:
		content = binary.AppendUvarint(content, uint64(len(a.Entries)))
		for _, e := range a.Entries {
			content = appendBlob(content, []byte(e.Name))
			content = appendBlob(content, e.Data)
		}
	case LayoutCDC:
		content = binary.AppendUvarint(content, cdcTarget)
		content = binary.AppendUvarint(content, cdcMin)
		content = binary.AppendUvarint(content, cdcMax)
		blocks, seqs := buildCDCIndex(a.Entries, cdcTarget, cdcMin, cdcMax)
		content = binary.AppendUvarint(content, uint64(len(blocks)))
		for _, b := range blocks {
			content = appendBlob(content, b)
		}
		content = binary.AppendUvarint(content, uint64(len(a.Entries)))
		for i, e := range a.Entries {
			content = appendBlob(content, []byte(e.Name))
			content = binary.AppendUvarint(content, uint64(len(e.Data)))
			content = binary.AppendUvarint(content, uint64(len(seqs[i])))
			for _, idx := range seqs[i] {
				content = binary.AppendUvarint(content, uint64(idx))
			}
		}
	default:
		return nil, fmt.Errorf("%w: unsupported layout %d", ErrArchive, layout)
	}

	packed, err := compress(codec, content)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(archiveMagic)+2+len(packed))
	out = append(out, archiveMagic...)
	out = append(out, archiveVersion, byte(codec))
	return append(out, packed...), nil
}

// UnmarshalArchive decodes an archive and reports the layout and codec it used.
func UnmarshalArchive(data []byte) (*Archive, ArchiveLayout, ArchiveCodec, error) {
	if len(data) < len(archiveMagic)+2 || string(data[:len(archiveMagic)]) != archiveMagic {
		return nil, 0, 0, fmt.Errorf("%w: bad magic", ErrArchive)
	}
	if v := data[len(archiveMagic)]; v != archiveVersion {
		return nil, 0, 0, fmt.Errorf("%w: unsupported version %d", ErrArchive, v)
	}
	codec := ArchiveCodec(data[len(archiveMagic)+1])
	content, err := decompress(codec, data[len(archiveMagic)+2:])
	if err != nil {
		return nil, 0, 0, err
	}
	if len(content) == 0 {
		return nil, 0, 0, fmt.Errorf("%w: empty content", ErrArchive)
	}
	layout := ArchiveLayout(content[0])
	r := bytes.NewReader(content[1:])

	var a *Archive
	switch layout {
	case LayoutRaw:
		a, err = readRawEntries(r)
	case LayoutCDC:
		a, err = readCDCEntries(r)
	default:
		err = fmt.Errorf("%w: unknown layout %d", ErrArchive, layout)
	}
	if err != nil {
		return nil, 0, 0, err
	}
	if r.Len() != 0 {
		return nil, 0, 0, fmt.Errorf("%w: %d trailing bytes", ErrArchive, r.Len())
	}
	return a, layout, codec, nil
}

func readRawEntries(r *bytes.Reader) (*Archive, error) {
	n, err := readCount(r, 2)
	if err != nil {
		return nil, err
	}
	a := &Archive{Entries: make([]ArchiveEntry, 0, n)}
	for i := 0; i < n; i++ {
		name, err := readBlob(r)
		if err != nil {
			return nil, fmt.Errorf("entry %d name: %w", i, err)
		}
		body, err := readBlob(r)
		if err != nil {
			return nil, fmt.Errorf("entry %d (%s): %w", i, name, err)
		}
		a.Entries = append(a.Entries, ArchiveEntry{Name: string(name), Data: body})
	}
	return a, nil
}

func readCDCEntries(r *bytes.Reader) (*Archive, error) {
	var params [3]uint64
	for i := range params {
		v, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, fmt.Errorf("%w: cdc parameters: %v", ErrArchive, err)
		}
		params[i] = v
	}
	maxSz := params[2]

	nBlocks, err := readCount(r, 1)
	if err != nil {
		return nil, err
	}
	blocks := make([][]byte, nBlocks)
	for i := range blocks {
		if blocks[i], err = readBlob(r); err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
	}

	n, err := readCount(r, 3)
	if err != nil {
		return nil, err
	}
	a := &Archive{Entries: make([]ArchiveEntry, 0, n)}
	for i := 0; i < n; i++ {
		name, err := readBlob(r)
		if err != nil {
			return nil, fmt.Errorf("entry %d name: %w", i, err)
		}
		rawLen, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %s length: %v", ErrArchive, name, err)
		}
		seqLen, err := readCount(r, 1)
		if err != nil {
			return nil, err
		}
		body := make([]byte, 0, min(rawLen, 1<<20))
		for j := 0; j < seqLen; j++ {
			idx, err := binary.ReadUvarint(r)
			if err != nil {
				return nil, fmt.Errorf("%w: entry %s block ref: %v", ErrArchive, name, err)
			}
			if idx >= uint64(len(blocks)) {
				return nil, fmt.Errorf("%w: entry %s references block %d of %d", ErrArchive, name, idx, len(blocks))
			}
			body = append(body, blocks[idx]...)
			if uint64(len(body)) > rawLen+maxSz {
				return nil, fmt.Errorf("%w: entry %s overruns its length", ErrArchive, name)
			}
		}
		if uint64(len(body)) != rawLen {
			return nil, fmt.Errorf("%w: entry %s is %d bytes, want %d", ErrArchive, name, len(body), rawLen)
		}
		a.Entries = append(a.Entries, ArchiveEntry{Name: string(name), Data: body})
	}
	return a, nil
}

func appendBlob(dst, b []byte) []byte {
	dst = binary.AppendUvarint(dst, uint64(len(b)))
	return append(dst, b...)
}

func readBlob(r *bytes.Reader) ([]byte, error) {
	n, err := readCount(r, 1)
	if err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchive, err)
	}
	return b, nil
}

// readCount reads a uvarint count of items that take at least minBytes each.
func readCount(r *bytes.Reader, minBytes int) (int, error) {
	n, err := binary.ReadUvarint(r)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrArchive, err)
	}
	if n > uint64(r.Len()/minBytes) {
		return 0, fmt.Errorf("%w: count %d exceeds remaining %d bytes", ErrArchive, n, r.Len())
	}
	return int(n), nil
}

func compress(codec ArchiveCodec, b []byte) ([]byte, error) {
	switch codec {
	case CodecNone:
		return b, nil
	case CodecZlib:
		var buf bytes.Buffer
		zw, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
		if err != nil {
			return nil, err
		}
		if _, err := zw.Write(b); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case CodecZstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(b, nil), nil
	case CodecS2:
		return s2.Encode(nil, b), nil
	}
	return nil, fmt.Errorf("%w: unsupported codec %d", ErrArchive, codec)
}

func decompress(codec ArchiveCodec, b []byte) ([]byte, error) {
	switch codec {
	case CodecNone:
		return b, nil
	case CodecZlib:
		zr, err := zlib.NewReader(bytes.NewReader(b))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrArchive, err)
		}
		defer zr.Close()
		return io.ReadAll(zr)
	case CodecZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		out, err := dec.DecodeAll(b, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrArchive, err)
		}
		return out, nil
	case CodecS2:
		out, err := s2.Decode(nil, b)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrArchive, err)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: unsupported codec %d", ErrArchive, codec)
}

// buildCDCIndex cuts every entry with a gear rolling hash and returns the
// unique chunks plus, per entry, the chunk indices that rebuild it.
func buildCDCIndex(entries []ArchiveEntry, target, minSz, maxSz int) ([][]byte, [][]int) {
	var gear [256]uint64
	seed := xxhash.Sum64String("voxarc-cdc-gear")
	for i := range gear {
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], seed+uint64(i)*0x9E3779B185EBCA87)
		gear[i] = xxhash.Sum64(b[:]) | 1
	}
	mask := uint64(1)<<uint(math.Round(math.Log2(float64(target)))) - 1

	var blocks [][]byte
	index := make(map[uint64][]int)
	add := func(b []byte) int {
		h := xxhash.Sum64(b)
		for _, idx := range index[h] {
			if bytes.Equal(blocks[idx], b) {
				return idx
			}
		}
		idx := len(blocks)
		blocks = append(blocks, bytes.Clone(b))
		index[h] = append(index[h], idx)
		return idx
	}

	seqs := make([][]int, len(entries))
	for i, e := range entries {
		data := e.Data
		start := 0
		var h uint64
		for pos := range data {
			h = h<<1 + gear[data[pos]]
			size := pos - start + 1
			if size < minSz {
				continue
			}
			if h&mask == 0 || size >= maxSz {
				seqs[i] = append(seqs[i], add(data[start:pos+1]))
				start = pos + 1
				h = 0
			}
		}
		if start < len(data) {
			seqs[i] = append(seqs[i], add(data[start:]))
		}
	}
	return blocks, seqs
}
