package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func crlf(lines ...string) string {
	return strings.Join(lines, "\r\n") + "\r\n"
}

func emptyMember(name string) string {
	return crlf("BOMT 12:"+name, "EOMT 00:")
}

func testLot() map[string]string {
	return map[string]string{
		"E0000A01.THF": crlf(
			"BOMT 12:E0000A01.THF",
			"CSET 03:IRV",
			"RTYSA03:GTS",
			"RIDSA10:SUPPORT_01",
			"VDASD08:19920801",
			"RTYSA03:GTL",
			"RIDSA09:BATCH_001",
			"EOMT 00:",
		),
		"EDAB01SE.GEO": crlf(
			"BOMT 12:EDAB01SE.GEO",
			"RTYSA03:GEO",
			"RIDSA06:GEO_01",
			"EOMT 00:",
		),
		"EDAB01SE.QAL": emptyMember("EDAB01SE.QAL"),
		"EDAB01T1.VEC": crlf(
			"BOMT 12:EDAB01T1.VEC",
			"RTYSA03:PNO",
			"RIDSA07:Noeud_1",
			"CORCC23:+984210.00;+6561010.00;",
			"EOMT 00:",
		),
		"EDAB01T2.VEC": emptyMember("EDAB01T2.VEC"),
		"EDAB01T3.VEC": emptyMember("EDAB01T3.VEC"),
		"EDAB01S1.VEC": emptyMember("EDAB01S1.VEC"),
	}
}

func writeLot(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile(%s): %v", name, err)
		}
	}
	return dir
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "absent.toml")}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version Execute: %v", err)
	}
	if strings.TrimSpace(out) != "edigeo "+version {
		t.Fatalf("version output = %q", out)
	}
}

func TestCheckCmdReportsEveryMember(t *testing.T) {
	dir := writeLot(t, testLot())
	out, err := runCLI(t, "check", dir)
	if err != nil {
		t.Fatalf("check Execute: %v\noutput:\n%s", err, out)
	}
	if !strings.Contains(out, "ok: decoded 7 member(s), 0 anomaly(ies)") {
		t.Fatalf("check output = %q", out)
	}
	if !strings.Contains(out, "EDAB01T1.VEC") {
		t.Fatalf("check output does not name T1 file: %q", out)
	}
}

func TestCheckCmdJSON(t *testing.T) {
	dir := writeLot(t, testLot())
	out, err := runCLI(t, "check", "--output", "json", dir)
	if err != nil {
		t.Fatalf("check Execute: %v\noutput:\n%s", err, out)
	}
	var report checkReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("json.Unmarshal: %v\noutput:\n%s", err, out)
	}
	if len(report.Members) != 7 || report.Members[0].Member != "THF" {
		t.Fatalf("members = %+v", report.Members)
	}
	if len(report.Members[0].Fingerprint) != 64 {
		t.Fatalf("fingerprint = %q, want 64 hex chars", report.Members[0].Fingerprint)
	}
}

func TestBlocksCmdText(t *testing.T) {
	dir := writeLot(t, testLot())
	out, err := runCLI(t, "blocks", dir)
	if err != nil {
		t.Fatalf("blocks Execute: %v\noutput:\n%s", err, out)
	}
	for _, want := range []string{"THF (E0000A01.THF)", "support", "GTS", "batch", "node"} {
		if !strings.Contains(out, want) {
			t.Fatalf("blocks output missing %q:\n%s", want, out)
		}
	}
}

func TestRecordsCmdYAML(t *testing.T) {
	dir := writeLot(t, testLot())
	out, err := runCLI(t, "records", "--member", "thf", "-o", "yaml", dir)
	if err != nil {
		t.Fatalf("records Execute: %v\noutput:\n%s", err, out)
	}
	var views []recordView
	if err := yaml.Unmarshal([]byte(out), &views); err != nil {
		t.Fatalf("yaml.Unmarshal: %v\noutput:\n%s", err, out)
	}
	if len(views) != 8 {
		t.Fatalf("got %d records, want 8", len(views))
	}
	if views[0].Code != "BOM" || views[0].Line != 1 {
		t.Fatalf("first record = %+v", views[0])
	}
	if views[4].Code != "VDA" || views[4].Value != "1992-08-01" {
		t.Fatalf("VDA record = %+v", views[4])
	}
	if views[7].Code != "EOM" || views[7].Value != "" {
		t.Fatalf("last record = %+v", views[7])
	}
}

func TestConfigFileAndFlagOverride(t *testing.T) {
	files := testLot()
	files["EDAB01SE.QAL"] = crlf("BOMT 12:EDAB01SE.QAL", "RTYSA03:XXX", "EOMT 00:")
	dir := writeLot(t, files)

	cfgPath := filepath.Join(t.TempDir(), "edigeo.toml")
	if err := os.WriteFile(cfgPath, []byte("strict = true\nworkers = 2\n"), 0o644); err != nil {
		t.Fatalf("WriteFile(config): %v", err)
	}

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"--config", cfgPath, "check", dir})
	if err := root.Execute(); err == nil {
		t.Fatal("strict config should fail on anomaly")
	}

	out.Reset()
	root = newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"--config", cfgPath, "--strict=false", "check", dir})
	if err := root.Execute(); err != nil {
		t.Fatalf("--strict=false should override config: %v", err)
	}
	if !strings.Contains(out.String(), "1 anomaly(ies)") {
		t.Fatalf("check output = %q", out.String())
	}
}

func TestExitCodes(t *testing.T) {
	unknown := testLot()
	unknown["EDAB01SE.GEO"] = crlf("BOMT 12:EDAB01SE.GEO", "XYZSA01:a", "EOMT 00:")
	mismatch := testLot()
	mismatch["EDAB01SE.GEO"] = crlf("BOMT 12:EDAB01SE.GEO", "RIDSA04:abc", "EOMT 00:")
	incomplete := testLot()
	delete(incomplete, "EDAB01S1.VEC")

	tests := []struct {
		name string
		args func(t *testing.T) []string
		want int
	}{
		{"ok", func(t *testing.T) []string { return []string{"check", writeLot(t, testLot())} }, exitOK},
		{"not found", func(t *testing.T) []string { return []string{"check", filepath.Join(t.TempDir(), "nope")} }, exitNotFound},
		{"incomplete", func(t *testing.T) []string { return []string{"check", writeLot(t, incomplete)} }, exitIncomplete},
		{"unknown code", func(t *testing.T) []string { return []string{"check", writeLot(t, unknown)} }, exitUnknown},
		{"size mismatch", func(t *testing.T) []string { return []string{"check", writeLot(t, mismatch)} }, exitLine},
		{"bad output", func(t *testing.T) []string { return []string{"check", "-o", "xml", writeLot(t, testLot())} }, exitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args(t)...)
			if got := exitCode(err); got != tt.want {
				t.Fatalf("exitCode(%v) = %d, want %d", err, got, tt.want)
			}
		})
	}
}
