package dicomfile_test

import (
	"path/filepath"
	"testing"

	"dicomexport/internal/dicomfile"
	"dicomexport/internal/testsupport"
)

func TestReadMetadataFullHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.dcm")
	testsupport.WriteDicomFile(t, path, testsupport.DefaultImageSpec())

	meta, err := dicomfile.ReadMetadata(path)
	if err != nil {
		t.Fatal(err)
	}

	if meta.PatientName != "DOE^JOHN" {
		t.Fatalf("patient name = %q", meta.PatientName)
	}
	if meta.DisplayPatientName() != "DOE JOHN" {
		t.Fatalf("display name = %q", meta.DisplayPatientName())
	}
	if meta.PatientID != "PX-1001" {
		t.Fatalf("patient id = %q", meta.PatientID)
	}
	if meta.StudyDate != "20240102" || meta.Modality != "MR" {
		t.Fatalf("study fields = %q %q", meta.StudyDate, meta.Modality)
	}
	if !meta.SeriesNumber.Known || meta.SeriesNumber.Value != 3 {
		t.Fatalf("series number = %+v", meta.SeriesNumber)
	}
	if !meta.InstanceNumber.Known || meta.InstanceNumber.Value != 1 {
		t.Fatalf("instance number = %+v", meta.InstanceNumber)
	}
	if !meta.SliceLocation.Known || meta.SliceLocation.Value != -12.5 {
		t.Fatalf("slice location = %+v", meta.SliceLocation)
	}
	if meta.SourcePath != path {
		t.Fatalf("source path = %q", meta.SourcePath)
	}
}

func TestReadMetadataAbsentFieldsUseSentinels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sparse.dcm")
	spec := testsupport.DicomSpec{Modality: "CT"}
	testsupport.WriteDicomFile(t, path, spec)

	meta, err := dicomfile.ReadMetadata(path)
	if err != nil {
		t.Fatal(err)
	}

	if meta.PatientName != dicomfile.UnknownValue {
		t.Fatalf("patient name = %q", meta.PatientName)
	}
	if meta.PatientID != dicomfile.UnknownValue {
		t.Fatalf("patient id = %q", meta.PatientID)
	}
	if meta.SeriesNumber.Known || meta.InstanceNumber.Known || meta.SliceLocation.Known {
		t.Fatalf("optional fields should be unknown: %+v", meta)
	}
	if meta.SeriesNumber.String() != dicomfile.UnknownValue {
		t.Fatalf("sentinel formatting = %q", meta.SeriesNumber.String())
	}
	if meta.Modality != "CT" {
		t.Fatalf("modality = %q", meta.Modality)
	}
}

func TestReadMetadataDecodesLatin1(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latin1.dcm")
	spec := testsupport.DefaultImageSpec()
	spec.CharacterSet = "ISO_IR 100"
	// "MÜLLER^JÜRGEN" in ISO 8859-1: 0xDC is Ü.
	spec.PatientName = "M\xdcLLER^J\xdcRGEN"
	testsupport.WriteDicomFile(t, path, spec)

	meta, err := dicomfile.ReadMetadata(path)
	if err != nil {
		t.Fatal(err)
	}
	if meta.PatientName != "MÜLLER^JÜRGEN" {
		t.Fatalf("patient name not decoded: %q", meta.PatientName)
	}
}

func TestOptionalFormatting(t *testing.T) {
	if got := (dicomfile.OptionalInt{Value: 12, Known: true}).String(); got != "12" {
		t.Fatalf("int formatting = %q", got)
	}
	if got := (dicomfile.OptionalFloat{Value: -4.25, Known: true}).String(); got != "-4.25" {
		t.Fatalf("float formatting = %q", got)
	}
	if got := (dicomfile.OptionalFloat{}).String(); got != dicomfile.UnknownValue {
		t.Fatalf("unknown float = %q", got)
	}
}
