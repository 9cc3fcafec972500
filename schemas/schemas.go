// Package schemas embeds the wire-format JSON schemas so the server can
// validate inbound messages against the same documents clients build from.
package schemas

import (
	_ "embed"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed join.schema.json
var joinSchema string

//go:embed intent.schema.json
var intentSchema string

//go:embed hash.schema.json
var hashSchema string

//go:embed turn.schema.json
var turnSchema string

//go:embed desync.schema.json
var desyncSchema string

var (
	Join   = jsonschema.MustCompileString("join.schema.json", joinSchema)
	Intent = jsonschema.MustCompileString("intent.schema.json", intentSchema)
	Hash   = jsonschema.MustCompileString("hash.schema.json", hashSchema)
	Turn   = jsonschema.MustCompileString("turn.schema.json", turnSchema)
	Desync = jsonschema.MustCompileString("desync.schema.json", desyncSchema)
)
