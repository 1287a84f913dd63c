package artifact

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/engdraw/groupdoc/internal/grouperr"
	"github.com/engdraw/groupdoc/internal/ocrmodel"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/ocr_artifact.schema.json
var ocrSchemaJSON []byte

//go:embed schema/grouping_artifact.schema.json
var groupingSchemaJSON []byte

func compileSchema(name string, raw []byte) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", name, err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return schema, nil
}

func validateAgainst(name string, raw, data []byte) error {
	schema, err := compileSchema(name, raw)
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decode %s payload: %w", name, err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%s does not match schema: %w", name, err)
	}
	return nil
}

// ValidateInputBytes checks the raw OCR artifact against the embedded
// input schema. Shape errors surface as InputMalformed before any
// decoding into the typed model.
func ValidateInputBytes(data []byte) error {
	if err := validateAgainst("ocr_artifact.schema.json", ocrSchemaJSON, data); err != nil {
		return grouperr.Wrap(grouperr.InputMalformed, "validate_input", "ocr artifact failed schema validation", err)
	}
	return nil
}

// ValidateOutputBytes checks an encoded grouping artifact against the
// embedded output schema. A failure here is a bug in the assembler, not
// in the input, so it surfaces as InternalInvariantViolated.
func ValidateOutputBytes(data []byte) error {
	if err := validateAgainst("grouping_artifact.schema.json", groupingSchemaJSON, data); err != nil {
		return grouperr.Wrap(grouperr.InternalInvariantViolated, "validate_output", "grouping artifact failed schema validation", err)
	}
	return nil
}

// ValidateInput checks the cross-reference invariants JSON Schema cannot
// express: document-unique token_ids and token/page page_num agreement.
func ValidateInput(doc ocrmodel.Document) error {
	if doc.DocID == "" {
		return grouperr.New(grouperr.InputMalformed, "validate_input", "doc_id is empty")
	}

	seen := make(map[string]bool)
	lastPageNum := 0
	for _, page := range doc.Pages {
		if page.PageNum < 1 {
			return grouperr.New(grouperr.InputMalformed, "validate_input",
				fmt.Sprintf("page_num must be >= 1, got %d", page.PageNum))
		}
		if page.PageNum <= lastPageNum {
			return grouperr.New(grouperr.InputMalformed, "validate_input",
				fmt.Sprintf("pages out of order: page_num %d after %d", page.PageNum, lastPageNum))
		}
		lastPageNum = page.PageNum
		for _, tok := range page.Tokens {
			if tok.TokenID == "" {
				return grouperr.New(grouperr.InputMalformed, "validate_input",
					fmt.Sprintf("empty token_id on page %d", page.PageNum))
			}
			if seen[tok.TokenID] {
				return grouperr.New(grouperr.InputMalformed, "validate_input",
					"duplicate token_id in document", tok.TokenID)
			}
			seen[tok.TokenID] = true
			if tok.PageNum != page.PageNum {
				return grouperr.New(grouperr.InputMalformed, "validate_input",
					fmt.Sprintf("token page_num %d does not match page %d", tok.PageNum, page.PageNum), tok.TokenID)
			}
		}
	}
	return nil
}
