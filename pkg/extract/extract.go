// Package extract pulls structured payloads out of free-text model replies.
//
// The two modes are deliberately asymmetric: JSON extraction is strict and
// fails loudly, document extraction is lenient and always returns something.
package extract

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// ErrExtraction indicates that no parseable JSON object was found in a
// model response.
var ErrExtraction = errors.New("no parseable JSON object in response")

// JSON extracts the JSON object spanning from the first '{' to the last '}'
// in text and verifies it parses. Surrounding markdown fencing or prose is
// tolerated; a missing or malformed object is an error.
func JSON(text string) (object string, err error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		err = errors.Wrap(ErrExtraction, "no JSON braces found")
		return object, err
	}

	object = text[start : end+1]

	var probe json.RawMessage
	jsonErr := json.Unmarshal([]byte(object), &probe)
	if jsonErr != nil {
		object = ""
		err = errors.Wrapf(ErrExtraction, "extracted span does not parse: %v", jsonErr)
		return object, err
	}

	return object, err
}

// Document extracts a document from text. If the text contains a fenced
// block labeled with lang the interior of that block is returned; failing
// that, the interior of any fenced block; failing that, the text verbatim.
// Document never fails.
func Document(text, lang string) (doc string) {
	doc, found := fencedBlock(text, lang)
	if found {
		return doc
	}

	doc, found = fencedBlock(text, "")
	if found {
		return doc
	}

	doc = text
	return doc
}

// fencedBlock returns the interior of the first ```<label> fenced block.
func fencedBlock(text, label string) (interior string, found bool) {
	open := "```" + label + "\n"
	start := strings.Index(text, open)
	if start == -1 {
		return interior, found
	}
	start += len(open)

	end := strings.Index(text[start:], "\n```")
	if end == -1 {
		return interior, found
	}

	interior = text[start : start+end]
	found = true
	return interior, found
}
