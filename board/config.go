package board

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// LoadConfig reads the YAML file over the current configuration. All flags that were
// explicitly set in fs are applied again afterwards, so the command line overrides the file.
func (b *Board) LoadConfig(fs *flag.FlagSet, path string) error {
	setFlags := make(map[string]string)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = f.Value.String()
	})

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := b.ParseConfig(data); err != nil {
		return fmt.Errorf("Failed to parse config file %v: %v", path, err)
	}
	log.Debugf("Loaded board configuration from %v", path)

	for name, value := range setFlags {
		if err := fs.Set(name, value); err != nil {
			return err
		}
	}
	return nil
}

// ParseConfig rejects unknown keys. An empty document leaves the configuration unchanged.
func (b *Board) ParseConfig(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(b); err != nil && err != io.EOF {
		return err
	}
	return nil
}
