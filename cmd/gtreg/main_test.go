package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"gtreg/internal/api"
	"gtreg/internal/config"
	"gtreg/internal/registry"
	"gtreg/internal/testsupport"
)

const lesPaul = `[
	{
		"manufacturer": {"name": "Gibson", "country": "USA"},
		"model": {"manufacturer_name": "Gibson", "product_line_name": "Les Paul", "name": "Les Paul Standard", "year": 1959}
	},
	{
		"individual_guitar": {
			"model_reference": {"manufacturer_name": "Gibson", "model_name": "Les Paul Standard", "year": 1959},
			"serial_number": "9-0824",
			"photos": [{"storage_key": "lp59/front.jpg"}]
		}
	}
]`

func writeConfig(t *testing.T) (*config.Config, string) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(testsupport.BaseDir(cfg), "gtreg.toml")
	testsupport.WriteFile(t, path, data)
	return cfg, path
}

func runCLI(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeDocument(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "batch.json")
	testsupport.WriteFile(t, path, []byte(doc))
	return path
}

func TestValidateCommand(t *testing.T) {
	doc := writeDocument(t, `[
		{"manufacturer": {"name": "Fender"}},
		{"individual_guitar": {"serial_number": "X1"}}
	]`)

	out, err := runCLI(t, "", "validate", "--file", doc, "--json")
	if err == nil || !strings.Contains(err.Error(), "1 of 2 submission(s) invalid") {
		t.Fatalf("expected one invalid submission, got %v", err)
	}
	var results []api.Submission
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(results) != 2 || results[0].Status != "valid" || results[1].Status != "invalid" {
		t.Fatalf("unexpected results: %+v", results)
	}
	if len(results[1].FieldErrors) == 0 || results[1].FieldErrors[0].Path != "individual_guitar" {
		t.Fatalf("expected guitar identification failure, got %+v", results[1].FieldErrors)
	}
}

func TestIngestCommandJSON(t *testing.T) {
	_, cfgPath := writeConfig(t)
	doc := writeDocument(t, lesPaul)

	out, err := runCLI(t, cfgPath, "ingest", "--file", doc, "--json")
	if err != nil {
		t.Fatalf("ingest failed: %v\n%s", err, out)
	}
	var batch api.BatchResponse
	if err := json.Unmarshal([]byte(out), &batch); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if batch.Totals.Submitted != 2 || batch.Totals.Succeeded != 2 {
		t.Fatalf("unexpected totals: %+v", batch.Totals)
	}
	if batch.Counters.ManufacturersInserted != 1 || batch.Counters.ModelsInserted != 1 || batch.Counters.GuitarsInserted != 1 {
		t.Fatalf("unexpected counters: %+v", batch.Counters)
	}
	if batch.Counters.ImagesAttached != 1 {
		t.Fatalf("expected one attached photo, got %+v", batch.Counters)
	}

	out, err = runCLI(t, cfgPath, "ingest", "--file", doc)
	if err != nil {
		t.Fatalf("re-ingest failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Succeeded") {
		t.Fatalf("expected summary output, got:\n%s", out)
	}
}

func TestIngestCommandFailsOnFailedSubmission(t *testing.T) {
	_, cfgPath := writeConfig(t)
	doc := writeDocument(t, `{"individual_guitar": {"model_reference": {"manufacturer_name": "Nobody", "model_name": "X", "year": 1970}}}`)

	out, err := runCLI(t, cfgPath, "ingest", "--file", doc)
	if err == nil || !strings.Contains(err.Error(), "1 of 1 submission(s) failed") {
		t.Fatalf("expected failed submission error, got %v\n%s", err, out)
	}
	if !strings.Contains(out, "failed") {
		t.Fatalf("expected failed status in output:\n%s", out)
	}
}

func TestImagesCommands(t *testing.T) {
	cfg, cfgPath := writeConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	maker := testsupport.SeedManufacturer(t, st, "Martin")
	model := testsupport.SeedModel(t, st, maker.ID, "D-28", 1937)
	modelRef := registry.EntityRef{Kind: registry.KindModel, ID: model.ID}
	img := testsupport.SeedImage(t, st, modelRef, "d28/front.jpg", true)

	out, err := runCLI(t, cfgPath, "images", "duplicate", img.ID,
		"--entity-type", "manufacturer", "--entity-id", maker.ID, "--reason", "catalog cover")
	if err != nil {
		t.Fatalf("duplicate failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Registered image") {
		t.Fatalf("unexpected output: %s", out)
	}

	out, err = runCLI(t, cfgPath, "images", "list", "--entity-type", "manufacturer", "--entity-id", maker.ID, "--json")
	if err != nil {
		t.Fatalf("list failed: %v\n%s", err, out)
	}
	var list api.ImageListResponse
	if err := json.Unmarshal([]byte(out), &list); err != nil {
		t.Fatalf("decode list: %v\n%s", err, out)
	}
	if len(list.Items) != 1 {
		t.Fatalf("expected one image, got %+v", list.Items)
	}
	got := list.Items[0]
	if !got.IsDuplicate || got.OriginalImageID != img.ID || got.StorageKey != "d28/front.jpg" {
		t.Fatalf("unexpected duplicate: %+v", got)
	}
	if got.DuplicateReason != "catalog cover" {
		t.Fatalf("unexpected reason %q", got.DuplicateReason)
	}

	if _, err := runCLI(t, cfgPath, "images", "duplicate", img.ID, "--entity-type", "model", "--entity-id", model.ID); err == nil {
		t.Fatal("expected self-reference to be rejected")
	}
	if _, err := runCLI(t, cfgPath, "images", "list", "--entity-type", "specification", "--entity-id", "x"); err == nil {
		t.Fatal("expected invalid entity type to be rejected")
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("GTREG_DATABASE_DSN", "")
	target := filepath.Join(home, "conf", "gtreg.toml")

	out, err := runCLI(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init failed: %v\n%s", err, out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected sample config: %v", err)
	}
	if _, err := runCLI(t, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected existing config to be preserved without --overwrite")
	}
	if _, err := runCLI(t, "", "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	out, err = runCLI(t, target, "config", "validate")
	if err != nil {
		t.Fatalf("config validate failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Configuration valid") || !strings.Contains(out, "sqlite") {
		t.Fatalf("unexpected validate output:\n%s", out)
	}
}

func TestDoctorCommand(t *testing.T) {
	_, cfgPath := writeConfig(t)

	out, err := runCLI(t, cfgPath, "doctor")
	if err != nil {
		t.Fatalf("doctor failed: %v\n%s", err, out)
	}
	for _, want := range []string{"Readiness", "Registry database", "[OK]"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "[ERROR]") {
		t.Fatalf("unexpected failed check:\n%s", out)
	}
}
