package dicomfile_test

import (
	"bytes"
	"testing"

	"dicomexport/internal/dicomfile"
	"dicomexport/internal/testsupport"
)

func TestClassifyImageRecord(t *testing.T) {
	data := testsupport.DicomBytes(t, testsupport.DefaultImageSpec())

	got := dicomfile.Classify(bytes.NewReader(data), 4096)
	if got.Class != dicomfile.ClassRecord {
		t.Fatalf("class = %v", got.Class)
	}
	if !got.IsRecord() {
		t.Fatal("image record should extract")
	}
}

func TestClassifyDirectoryIndex(t *testing.T) {
	data := testsupport.DicomBytes(t, testsupport.DirectoryIndexSpec())

	got := dicomfile.Classify(bytes.NewReader(data), 4096)
	if got.Class != dicomfile.ClassDirectoryIndex {
		t.Fatalf("class = %v", got.Class)
	}
	if !got.IsRecord() {
		t.Fatal("directory index should still extract")
	}
}

func TestClassifyNotDicom(t *testing.T) {
	cases := map[string][]byte{
		"plain text":  []byte("this is clearly not a medical image, just filler text padding it out to length"),
		"empty":       nil,
		"short":       []byte("DICM"),
		"wrong magic": append(make([]byte, 128), []byte("ZIPX")...),
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			got := dicomfile.Classify(bytes.NewReader(data), 4096)
			if got.Class != dicomfile.ClassNotDicom {
				t.Fatalf("class = %v", got.Class)
			}
			if got.IsRecord() {
				t.Fatal("must not extract")
			}
		})
	}
}

func TestClassifyUnreadable(t *testing.T) {
	got := dicomfile.Classify(failingReader{}, 4096)
	if got.Class != dicomfile.ClassUnreadable {
		t.Fatalf("class = %v", got.Class)
	}
	if got.Reason == "" {
		t.Fatal("unreadable classification should carry a reason")
	}
}

func TestClassifyBoundedWindowStopsBeforeSOPClass(t *testing.T) {
	// A window covering only preamble and magic cannot see the meta group;
	// the entry still classifies as a plain record.
	data := testsupport.DicomBytes(t, testsupport.DirectoryIndexSpec())
	got := dicomfile.ClassifyBytes(data[:dicomfile.MinWindowBytes])
	if got.Class != dicomfile.ClassRecord {
		t.Fatalf("class = %v", got.Class)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errTruncated
}

var errTruncated = &truncatedError{}

type truncatedError struct{}

func (*truncatedError) Error() string { return "device reported a bad sector" }
