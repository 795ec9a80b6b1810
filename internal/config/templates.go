package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

const templateHeader = `# fbvncd configuration.
# device may be a framebuffer path (/dev/fb0) or "test" for a synthetic
# pattern. fps is clamped to [1, 15]. ops_addr enables the HTTP ops
# endpoint when set (e.g. "127.0.0.1:9815").

`

// WriteTemplate writes a starter config file. Encoding the live Default()
// keeps the template from drifting out of sync with the struct.
func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}

	var buf bytes.Buffer
	buf.WriteString(templateHeader)
	if err := toml.NewEncoder(&buf).Encode(Default()); err != nil {
		return fmt.Errorf("config template encode: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o600)
}
