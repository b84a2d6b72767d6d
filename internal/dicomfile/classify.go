package dicomfile

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Class is the outcome of content-based record classification.
type Class int

const (
	// ClassNotDicom marks bytes without the part-10 preamble and magic.
	ClassNotDicom Class = iota
	// ClassRecord marks a DICOM record, image-bearing or not.
	ClassRecord
	// ClassDirectoryIndex marks a DICOMDIR-style index record: valid DICOM,
	// but a container index that carries no pixel data.
	ClassDirectoryIndex
	// ClassUnreadable marks entries whose bytes could not be read at all.
	ClassUnreadable
)

func (c Class) String() string {
	switch c {
	case ClassRecord:
		return "record"
	case ClassDirectoryIndex:
		return "directory-index"
	case ClassUnreadable:
		return "unreadable"
	default:
		return "not-dicom"
	}
}

// Classification pairs a Class with a reason for unreadable entries.
type Classification struct {
	Class  Class
	Reason string
}

// IsRecord reports whether the entry should be extracted.
func (c Classification) IsRecord() bool {
	return c.Class == ClassRecord || c.Class == ClassDirectoryIndex
}

// MinWindowBytes is the smallest prefix that can positively identify a DICOM
// part-10 file: preamble plus the four magic bytes.
const MinWindowBytes = 132

// mediaStorageDirectoryUID is the SOP class of DICOMDIR index files.
const mediaStorageDirectoryUID = "1.2.840.10008.1.3.10"

// Classify reads at most window bytes from r and classifies the content.
// Read failures yield ClassUnreadable; everything else is decided from the
// prefix alone.
func Classify(r io.Reader, window int) Classification {
	if window < MinWindowBytes {
		window = MinWindowBytes
	}
	prefix := make([]byte, window)
	n, err := io.ReadFull(r, prefix)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return Classification{Class: ClassUnreadable, Reason: fmt.Sprintf("read entry: %v", err)}
	}
	return ClassifyBytes(prefix[:n])
}

// ClassifyBytes classifies an in-memory prefix.
func ClassifyBytes(prefix []byte) Classification {
	if len(prefix) < MinWindowBytes {
		return Classification{Class: ClassNotDicom}
	}
	if string(prefix[128:132]) != "DICM" {
		return Classification{Class: ClassNotDicom}
	}
	if sopClass, ok := fileMetaSOPClass(prefix[132:]); ok && sopClass == mediaStorageDirectoryUID {
		return Classification{Class: ClassDirectoryIndex}
	}
	return Classification{Class: ClassRecord}
}

// fileMetaSOPClass walks explicit VR little endian group 0002 elements looking
// for MediaStorageSOPClassUID (0002,0002). The walk stays inside the supplied
// window; running off the end just means the answer is unknown.
func fileMetaSOPClass(data []byte) (string, bool) {
	offset := 0
	for offset+8 <= len(data) {
		group := binary.LittleEndian.Uint16(data[offset:])
		element := binary.LittleEndian.Uint16(data[offset+2:])
		if group != 0x0002 {
			return "", false
		}

		vr := string(data[offset+4 : offset+6])
		var length int
		var valueOffset int
		switch vr {
		case "OB", "OW", "OF", "SQ", "UN", "UT":
			if offset+12 > len(data) {
				return "", false
			}
			length = int(binary.LittleEndian.Uint32(data[offset+8:]))
			valueOffset = offset + 12
		default:
			length = int(binary.LittleEndian.Uint16(data[offset+6:]))
			valueOffset = offset + 8
		}
		if length < 0 || valueOffset+length > len(data) {
			return "", false
		}

		if element == 0x0002 {
			return trimUID(data[valueOffset : valueOffset+length]), true
		}
		offset = valueOffset + length
	}
	return "", false
}

func trimUID(value []byte) string {
	end := len(value)
	for end > 0 && (value[end-1] == 0x00 || value[end-1] == ' ') {
		end--
	}
	return string(value[:end])
}
