// Package testsupport synthesizes the fixtures the exporter tests need:
// minimal DICOM part-10 files, ZIP archives, and ISO 9660 images.
package testsupport

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// MediaStorageDirectoryClassUID is the SOP class of a DICOMDIR index file.
const MediaStorageDirectoryClassUID = "1.2.840.10008.1.3.10"

// mrImageStorageClassUID is the SOP class written for ordinary image fixtures.
const mrImageStorageClassUID = "1.2.840.10008.5.1.4.1.1.4"

// explicitVRLittleEndianUID is the only transfer syntax the fixtures use.
const explicitVRLittleEndianUID = "1.2.840.10008.1.2.1"

// DicomSpec describes a synthetic DICOM file. Zero-valued string fields are
// omitted from the dataset entirely, which is how real archives express
// unknown header values.
type DicomSpec struct {
	SOPClassUID       string
	PatientName       string
	PatientID         string
	StudyDate         string
	Modality          string
	SeriesNumber      string
	SeriesDescription string
	InstanceNumber    string
	SliceLocation     string
	CharacterSet      string

	// Rows/Cols > 0 adds an 8-bit MONOCHROME2 pixel module whose samples
	// ramp from Low to High across the frame.
	Rows, Cols int
	Low, High  byte
}

// DefaultImageSpec returns a spec for a complete 16x16 image record.
func DefaultImageSpec() DicomSpec {
	return DicomSpec{
		PatientName:       "DOE^JOHN",
		PatientID:         "PX-1001",
		StudyDate:         "20240102",
		Modality:          "MR",
		SeriesNumber:      "3",
		SeriesDescription: "T1 AXIAL",
		InstanceNumber:    "1",
		SliceLocation:     "-12.5",
		Rows:              16,
		Cols:              16,
		Low:               10,
		High:              200,
	}
}

// DirectoryIndexSpec returns a spec for a DICOMDIR-style index record: valid
// part-10 header, directory SOP class, no pixel data.
func DirectoryIndexSpec() DicomSpec {
	return DicomSpec{SOPClassUID: MediaStorageDirectoryClassUID}
}

// DicomBytes renders spec as an explicit VR little endian part-10 file.
func DicomBytes(t testing.TB, spec DicomSpec) []byte {
	t.Helper()

	sopClass := spec.SOPClassUID
	if sopClass == "" {
		sopClass = mrImageStorageClassUID
	}

	var meta bytes.Buffer
	writeElement(&meta, 0x0002, 0x0001, "OB", []byte{0x00, 0x01})
	writeElement(&meta, 0x0002, 0x0002, "UI", uiValue(sopClass))
	writeElement(&meta, 0x0002, 0x0003, "UI", uiValue("1.2.826.0.1.3680043.9999.1"))
	writeElement(&meta, 0x0002, 0x0010, "UI", uiValue(explicitVRLittleEndianUID))

	var body bytes.Buffer
	body.Write(make([]byte, 128))
	body.WriteString("DICM")
	writeElement(&body, 0x0002, 0x0000, "UL", uint32Value(uint32(meta.Len())))
	body.Write(meta.Bytes())

	if spec.CharacterSet != "" {
		writeElement(&body, 0x0008, 0x0005, "CS", stringValue(spec.CharacterSet))
	}
	writeElement(&body, 0x0008, 0x0016, "UI", uiValue(sopClass))
	if spec.StudyDate != "" {
		writeElement(&body, 0x0008, 0x0020, "DA", stringValue(spec.StudyDate))
	}
	if spec.Modality != "" {
		writeElement(&body, 0x0008, 0x0060, "CS", stringValue(spec.Modality))
	}
	if spec.SeriesDescription != "" {
		writeElement(&body, 0x0008, 0x103E, "LO", stringValue(spec.SeriesDescription))
	}
	if spec.PatientName != "" {
		writeElement(&body, 0x0010, 0x0010, "PN", stringValue(spec.PatientName))
	}
	if spec.PatientID != "" {
		writeElement(&body, 0x0010, 0x0020, "LO", stringValue(spec.PatientID))
	}
	if spec.SeriesNumber != "" {
		writeElement(&body, 0x0020, 0x0011, "IS", stringValue(spec.SeriesNumber))
	}
	if spec.InstanceNumber != "" {
		writeElement(&body, 0x0020, 0x0013, "IS", stringValue(spec.InstanceNumber))
	}
	if spec.SliceLocation != "" {
		writeElement(&body, 0x0020, 0x1041, "DS", stringValue(spec.SliceLocation))
	}

	if spec.Rows > 0 && spec.Cols > 0 {
		writeElement(&body, 0x0028, 0x0002, "US", uint16Value(1))
		writeElement(&body, 0x0028, 0x0004, "CS", stringValue("MONOCHROME2"))
		writeElement(&body, 0x0028, 0x0010, "US", uint16Value(uint16(spec.Rows)))
		writeElement(&body, 0x0028, 0x0011, "US", uint16Value(uint16(spec.Cols)))
		writeElement(&body, 0x0028, 0x0100, "US", uint16Value(8))
		writeElement(&body, 0x0028, 0x0101, "US", uint16Value(8))
		writeElement(&body, 0x0028, 0x0102, "US", uint16Value(7))
		writeElement(&body, 0x0028, 0x0103, "US", uint16Value(0))
		writeElement(&body, 0x7FE0, 0x0010, "OB", rampPixels(spec))
	}

	return body.Bytes()
}

// WriteDicomFile renders spec to path.
func WriteDicomFile(t testing.TB, path string, spec DicomSpec) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, DicomBytes(t, spec), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func rampPixels(spec DicomSpec) []byte {
	total := spec.Rows * spec.Cols
	pixels := make([]byte, total+total%2)
	span := int(spec.High) - int(spec.Low)
	for i := 0; i < total; i++ {
		pixels[i] = spec.Low + byte(span*i/max(total-1, 1))
	}
	return pixels
}

// longValueVRs take the 12-byte explicit VR header with a 32-bit length.
var longValueVRs = map[string]bool{"OB": true, "OW": true, "OF": true, "SQ": true, "UT": true, "UN": true}

func writeElement(buf *bytes.Buffer, group, element uint16, vr string, value []byte) {
	if len(value)%2 != 0 {
		panic(fmt.Sprintf("odd element length for (%04X,%04X)", group, element))
	}
	var tag [4]byte
	binary.LittleEndian.PutUint16(tag[0:], group)
	binary.LittleEndian.PutUint16(tag[2:], element)
	buf.Write(tag[:])
	buf.WriteString(vr)
	if longValueVRs[vr] {
		buf.Write([]byte{0, 0})
		var length [4]byte
		binary.LittleEndian.PutUint32(length[:], uint32(len(value)))
		buf.Write(length[:])
	} else {
		var length [2]byte
		binary.LittleEndian.PutUint16(length[:], uint16(len(value)))
		buf.Write(length[:])
	}
	buf.Write(value)
}

func stringValue(s string) []byte {
	if len(s)%2 != 0 {
		s += " "
	}
	return []byte(s)
}

// uiValue pads UID values with NUL per the standard, unlike text VRs.
func uiValue(s string) []byte {
	b := []byte(s)
	if len(b)%2 != 0 {
		b = append(b, 0x00)
	}
	return b
}

func uint16Value(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

func uint32Value(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}
