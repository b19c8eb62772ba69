package persona

import (
	"bytes"
	_ "embed"
	"fmt"
)

//go:embed builtin.yaml
var builtinYAML []byte

// Builtin returns the personas shipped with the engine.
func Builtin() *Catalog {
	c, err := Load(bytes.NewReader(builtinYAML))
	if err != nil {
		panic(fmt.Sprintf("invalid built-in personas: %v", err))
	}
	return c
}
