package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		p := filepath.Join("..", "..", "schemas", name)
		s, err := jsonschema.Compile(p)
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		return s
	}

	validate := func(s *jsonschema.Schema, v any) {
		t.Helper()
		if err := s.Validate(v); err != nil {
			t.Fatalf("validate: %v", err)
		}
	}

	joinSchema := compile("join.schema.json")
	intentSchema := compile("intent.schema.json")
	hashSchema := compile("hash.schema.json")
	turnSchema := compile("turn.schema.json")
	desyncSchema := compile("desync.schema.json")

	var join any
	_ = json.Unmarshal([]byte(`{
	  "type":"join",
	  "protocol_version":"1.0",
	  "gameID":"g1",
	  "clientID":"c1",
	  "persistentID":"p1",
	  "username":"anon",
	  "lastTurn":0
	}`), &join)
	validate(joinSchema, join)

	var intent any
	_ = json.Unmarshal([]byte(`{
	  "type":"intent",
	  "gameID":"g1",
	  "clientID":"c1",
	  "intent":{"type":"attack","playerID":"c1","targetID":"c2","troops":5000}
	}`), &intent)
	validate(intentSchema, intent)

	var hash any
	_ = json.Unmarshal([]byte(`{
	  "type":"hash",
	  "gameID":"g1",
	  "clientID":"c1",
	  "turnNumber":40,
	  "hash":"`+sampleHash+`"
	}`), &hash)
	validate(hashSchema, hash)

	var turn any
	_ = json.Unmarshal([]byte(`{
	  "type":"turn",
	  "turn":{"turnNumber":3,"gameID":"g1","intents":[{"type":"spawn","clientID":"c1","tile":42}]}
	}`), &turn)
	validate(turnSchema, turn)

	var desync any
	_ = json.Unmarshal([]byte(`{
	  "type":"desync",
	  "turn":30,
	  "correctHash":"`+sampleHash+`",
	  "clientsWithCorrectHash":3,
	  "totalActiveClients":5
	}`), &desync)
	validate(desyncSchema, desync)
}

const sampleHash = "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"

func TestSchemas_RejectBadIntent(t *testing.T) {
	p := filepath.Join("..", "..", "schemas", "intent.schema.json")
	s, err := jsonschema.Compile(p)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	bad := []string{
		`{"type":"intent","gameID":"g1","clientID":"c1","intent":{"type":"mark_disconnected"}}`,
		`{"type":"intent","gameID":"g1","clientID":"c1","intent":{"type":"attack","troops":-1}}`,
		`{"type":"intent","gameID":"g1","clientID":"c1"}`,
	}
	for _, raw := range bad {
		var v any
		_ = json.Unmarshal([]byte(raw), &v)
		if err := s.Validate(v); err == nil {
			t.Fatalf("expected validation failure for %s", raw)
		}
	}
}
