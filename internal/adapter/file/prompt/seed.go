package prompt

import (
	_ "embed"
	"encoding/json"
	"fmt"

	domainprompt "github.com/alanyang/iobos/internal/domain/prompt"
)

//go:embed seed/agent-prompts.json
var seedDocument []byte

// DefaultDocument returns the bundled four-agent document used to seed a fresh
// deployment.
func DefaultDocument() (domainprompt.Document, error) {
	var doc domainprompt.Document
	if err := json.Unmarshal(seedDocument, &doc); err != nil {
		return nil, fmt.Errorf("parsing seed document: %w", err)
	}
	return doc, nil
}
