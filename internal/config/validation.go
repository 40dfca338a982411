package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validate checks struct tags and the cross-field rules validator tags
// cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if !strings.Contains(c.Messages.AdminCurrentFmt, "%s") {
		return fmt.Errorf("messages.admin_current_fmt must contain %%s")
	}
	if !strings.Contains(c.Messages.InlineTitleFmt, "%d") {
		return fmt.Errorf("messages.inline_title_fmt must contain %%d")
	}

	return nil
}
