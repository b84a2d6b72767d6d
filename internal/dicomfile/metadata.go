package dicomfile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// UnknownValue is the sentinel used for header fields the record does not
// carry. It is a real value, never an empty string, so formatting and sort
// code can treat every field as present.
const UnknownValue = "unknown"

// OptionalInt is an integer header field with explicit presence.
type OptionalInt struct {
	Value int
	Known bool
}

func (o OptionalInt) String() string {
	if !o.Known {
		return UnknownValue
	}
	return strconv.Itoa(o.Value)
}

// OptionalFloat is a numeric header field with explicit presence.
type OptionalFloat struct {
	Value float64
	Known bool
}

func (o OptionalFloat) String() string {
	if !o.Known {
		return UnknownValue
	}
	return strconv.FormatFloat(o.Value, 'g', -1, 64)
}

// Metadata carries the header fields rendered onto images and used for
// gallery grouping. String fields hold UnknownValue when absent.
type Metadata struct {
	SourcePath        string
	PatientName       string
	PatientID         string
	StudyDate         string
	Modality          string
	SeriesNumber      OptionalInt
	SeriesDescription string
	SliceLocation     OptionalFloat
	InstanceNumber    OptionalInt
}

// DisplayPatientName flattens the caret-separated person-name components for
// human-facing output.
func (m Metadata) DisplayPatientName() string {
	return strings.TrimSpace(strings.ReplaceAll(m.PatientName, "^", " "))
}

// ReadMetadata parses the header of the DICOM file at path, skipping pixel
// data.
func ReadMetadata(path string) (Metadata, error) {
	dataset, err := dicom.ParseFile(path, nil, dicom.SkipPixelData())
	if err != nil {
		return Metadata{}, fmt.Errorf("parse dicom header %s: %w", path, err)
	}
	return MetadataFromDataset(dataset, path), nil
}

// MetadataFromDataset extracts metadata from an already-parsed dataset.
func MetadataFromDataset(dataset dicom.Dataset, sourcePath string) Metadata {
	decoder := characterDecoder(dataset)

	meta := Metadata{
		SourcePath:        sourcePath,
		PatientName:       stringField(dataset, tag.PatientName, decoder),
		PatientID:         stringField(dataset, tag.PatientID, decoder),
		StudyDate:         stringField(dataset, tag.StudyDate, nil),
		Modality:          stringField(dataset, tag.Modality, nil),
		SeriesDescription: stringField(dataset, tag.SeriesDescription, decoder),
	}
	meta.SeriesNumber = intField(dataset, tag.SeriesNumber)
	meta.InstanceNumber = intField(dataset, tag.InstanceNumber)
	meta.SliceLocation = floatField(dataset, tag.SliceLocation)
	return meta
}

// characterDecoder maps the dataset's SpecificCharacterSet to a decoder for
// the single-byte code pages that show up in practice. DICOM default repertoire
// and anything unrecognized pass strings through untouched.
func characterDecoder(dataset dicom.Dataset) *encoding.Decoder {
	term := rawStringField(dataset, tag.SpecificCharacterSet)
	switch strings.TrimSpace(term) {
	case "ISO_IR 100":
		return charmap.ISO8859_1.NewDecoder()
	case "ISO_IR 101":
		return charmap.ISO8859_2.NewDecoder()
	case "ISO_IR 144":
		return charmap.ISO8859_5.NewDecoder()
	case "ISO_IR 148":
		return charmap.ISO8859_9.NewDecoder()
	default:
		return nil
	}
}

func rawStringField(dataset dicom.Dataset, t tag.Tag) string {
	element, err := dataset.FindElementByTag(t)
	if err != nil {
		return ""
	}
	values, ok := element.Value.GetValue().([]string)
	if !ok || len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}

func stringField(dataset dicom.Dataset, t tag.Tag, decoder *encoding.Decoder) string {
	value := rawStringField(dataset, t)
	if value == "" {
		return UnknownValue
	}
	if decoder != nil {
		if decoded, err := decoder.String(value); err == nil {
			value = decoded
		}
	}
	return value
}

func intField(dataset dicom.Dataset, t tag.Tag) OptionalInt {
	element, err := dataset.FindElementByTag(t)
	if err != nil {
		return OptionalInt{}
	}
	switch values := element.Value.GetValue().(type) {
	case []int:
		if len(values) > 0 {
			return OptionalInt{Value: values[0], Known: true}
		}
	case []string:
		if len(values) > 0 {
			if parsed, err := strconv.Atoi(strings.TrimSpace(values[0])); err == nil {
				return OptionalInt{Value: parsed, Known: true}
			}
		}
	}
	return OptionalInt{}
}

func floatField(dataset dicom.Dataset, t tag.Tag) OptionalFloat {
	element, err := dataset.FindElementByTag(t)
	if err != nil {
		return OptionalFloat{}
	}
	switch values := element.Value.GetValue().(type) {
	case []float64:
		if len(values) > 0 {
			return OptionalFloat{Value: values[0], Known: true}
		}
	case []string:
		if len(values) > 0 {
			if parsed, err := strconv.ParseFloat(strings.TrimSpace(values[0]), 64); err == nil {
				return OptionalFloat{Value: parsed, Known: true}
			}
		}
	}
	return OptionalFloat{}
}
