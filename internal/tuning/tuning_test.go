package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultsSanity(t *testing.T) {
	d := Defaults()
	if d.TurnIntervalMs <= 0 {
		t.Fatalf("turn interval %d", d.TurnIntervalMs)
	}
	if d.HashCheckInterval <= 0 {
		t.Fatalf("hash check interval %d", d.HashCheckInterval)
	}
	if d.WinPercentage <= 0 || d.WinPercentage > 100 {
		t.Fatalf("win percentage %d", d.WinPercentage)
	}
	if d.UnitCost["City"] <= 0 {
		t.Fatalf("city cost missing from the table")
	}
	if d.ConstructionDuration["City"] <= 0 {
		t.Fatalf("city build duration missing from the table")
	}
	if d.PingTimeoutMs <= d.DisconnectedMs {
		t.Fatalf("drop threshold %d must exceed flag threshold %d", d.PingTimeoutMs, d.DisconnectedMs)
	}
}

func TestLoadOverridesOnlyNamedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	body := "win_percentage: 55\nnuke_speed: 9\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.WinPercentage != 55 {
		t.Fatalf("win percentage %d, want 55", got.WinPercentage)
	}
	if got.NukeSpeed != 9 {
		t.Fatalf("nuke speed %d, want 9", got.NukeSpeed)
	}

	// Everything the file does not mention keeps its default.
	d := Defaults()
	if got.HashCheckInterval != d.HashCheckInterval {
		t.Fatalf("hash check interval drifted: %d", got.HashCheckInterval)
	}
	if got.UnitCost["City"] != d.UnitCost["City"] {
		t.Fatalf("city cost drifted: %d", got.UnitCost["City"])
	}
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatalf("expected an error for a missing file")
	}
	if got.WinPercentage != Defaults().WinPercentage {
		t.Fatalf("missing file did not fall back to defaults")
	}
}

func TestApplyTechClampsReloadFloor(t *testing.T) {
	e := DefaultEffects()
	for i := 0; i < 20; i++ {
		ApplyTech(&e, "samReload1")
	}
	if e.SamReloadTime != 40 {
		t.Fatalf("reload time %d, want clamped to 40", e.SamReloadTime)
	}
}
