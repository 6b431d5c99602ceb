package generation

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
)

var (
	//go:embed directives/system.txt
	defaultSystemDirective string

	//go:embed directives/user.txt
	defaultUserDirective string
)

// Composer merges the fixed design directive with user free text.
type Composer struct {
	system    string
	directive string
}

// NewComposer returns a Composer using the built-in directives.
func NewComposer() *Composer {
	return &Composer{system: defaultSystemDirective, directive: defaultUserDirective}
}

// LoadComposer returns a Composer whose user directive is read from path.
// An empty path selects the built-in directive.
func LoadComposer(path string) (*Composer, error) {
	c := NewComposer()
	if path == "" {
		return c, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read directive from %s: %v", ErrInvalidConfig, path, err)
	}
	if strings.TrimSpace(string(content)) == "" {
		return nil, fmt.Errorf("%w: directive file %s is empty", ErrInvalidConfig, path)
	}

	c.directive = string(content)
	return c, nil
}

// SystemPrompt returns the system-role directive sent alongside every
// composed prompt.
func (c *Composer) SystemPrompt() string {
	return c.system
}

// Compose returns the directive followed by the user's text. The result is a
// plain concatenation; userPrompt must not be blank.
func (c *Composer) Compose(userPrompt string) (string, error) {
	if strings.TrimSpace(userPrompt) == "" {
		return "", ErrEmptyPrompt
	}
	return c.directive + userPrompt, nil
}
