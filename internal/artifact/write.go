package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/engdraw/groupdoc/internal/grouperr"
	"github.com/engdraw/groupdoc/internal/groupmodel"
	"github.com/engdraw/groupdoc/internal/ocrmodel"
)

// ReadInput loads and validates an OCR artifact. The raw bytes are
// schema-checked before decoding so a shape violation is reported against
// the input file, not as a decode failure deep in the pipeline.
func ReadInput(path string) (ocrmodel.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ocrmodel.Document{}, grouperr.Wrap(grouperr.InputMissing, "read_input",
			fmt.Sprintf("cannot read ocr artifact %s", path), err)
	}
	if err := ValidateInputBytes(data); err != nil {
		return ocrmodel.Document{}, err
	}
	var doc ocrmodel.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return ocrmodel.Document{}, grouperr.Wrap(grouperr.InputMalformed, "read_input",
			fmt.Sprintf("cannot decode ocr artifact %s", path), err)
	}
	return doc, nil
}

// Encode produces the canonical byte form of a grouping artifact: keys in
// lexical order within every object (guaranteed by the wire structs),
// two-space indent, and a single trailing newline. Identical documents
// encode to identical bytes.
func Encode(doc groupmodel.Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode grouping artifact: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteCanonical encodes the document, self-checks it against the output
// schema, and writes it atomically: the bytes go to a temporary sibling
// which is renamed over the final path only after a successful write, so
// a failure never leaves a partial artifact at the output path.
func WriteCanonical(path string, doc groupmodel.Document) error {
	data, err := Encode(doc)
	if err != nil {
		return grouperr.Wrap(grouperr.InternalInvariantViolated, "write_output", "encoding failed", err)
	}
	if err := ValidateOutputBytes(data); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return grouperr.Wrap(grouperr.OutputUnwritable, "write_output",
			fmt.Sprintf("cannot create temporary file in %s", dir), err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return grouperr.Wrap(grouperr.OutputUnwritable, "write_output",
			fmt.Sprintf("cannot write %s", tmpName), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return grouperr.Wrap(grouperr.OutputUnwritable, "write_output",
			fmt.Sprintf("cannot close %s", tmpName), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return grouperr.Wrap(grouperr.OutputUnwritable, "write_output",
			fmt.Sprintf("cannot rename %s to %s", tmpName, path), err)
	}
	return nil
}
