package vox

// FileMagic opens every VOX file.
const FileMagic = "VOX "

// FileVersion is the format version the writer emits.
const FileVersion = 150

// supportedVersions lists the versions the reader accepts. 200 only adds
// chunks the reader skips.
var supportedVersions = map[int32]bool{150: true, 200: true}

const (
	fileHeaderLen  = 8
	chunkHeaderLen = 12
)

// Chunk ids.
const (
	idMain      = "MAIN"
	idPack      = "PACK"
	idSize      = "SIZE"
	idXYZI      = "XYZI"
	idRGBA      = "RGBA"
	idTransform = "nTRN"
	idGroup     = "nGRP"
	idShape     = "nSHP"
)

// MaxModelSize is the largest axis a model may have and still be written;
// XYZI stores each axis in one byte.
const MaxModelSize = 256
