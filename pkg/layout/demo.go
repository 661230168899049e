package layout

import _ "embed"

//go:embed demo.yaml
var demo []byte

// Demo returns the built-in development network document.
func Demo() []byte {
	out := make([]byte, len(demo))
	copy(out, demo)
	return out
}
