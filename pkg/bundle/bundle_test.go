package bundle

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

var lotFiles = map[string]string{
	"E0000A01.THF":   "BOMT 12:E0000A01.THF\r\nEOMT 00:\r\n",
	"EDAB01SE.GEO":   "BOMT 12:EDAB01SE.GEO\r\nEOMT 00:\r\n",
	"EDAB01SE.QAL":   "BOMT 12:EDAB01SE.QAL\r\nEOMT 00:\r\n",
	"EDAB01T1.VEC":   "BOMT 12:EDAB01T1.VEC\r\nEOMT 00:\r\n",
	"EDAB01T2.VEC":   "BOMT 12:EDAB01T2.VEC\r\nEOMT 00:\r\n",
	"EDAB01T3.VEC":   "BOMT 12:EDAB01T3.VEC\r\nEOMT 00:\r\n",
	"EDAB01S1.VEC":   "BOMT 12:EDAB01S1.VEC\r\nEOMT 00:\r\n",
	"README.txt":     "not a member",
	"EDAB01XX.VEC.o": "not a member either",
}

var optionalFiles = map[string]string{
	"EDAB01SE.DIC": "BOMT 12:EDAB01SE.DIC\r\nEOMT 00:\r\n",
	"EDAB01SE.GEN": "BOMT 12:EDAB01SE.GEN\r\nEOMT 00:\r\n",
	"EDAB01SE.SCD": "BOMT 12:EDAB01SE.SCD\r\nEOMT 00:\r\n",
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

func withoutFile(files map[string]string, name string) map[string]string {
	out := make(map[string]string, len(files))
	for k, v := range files {
		if k != name {
			out[k] = v
		}
	}
	return out
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		want Member
		ok   bool
	}{
		{"E0000A01.THF", MemberTHF, true},
		{"EDAB01SE.GEO", MemberGEO, true},
		{"EDAB01SE.QAL", MemberQAL, true},
		{"EDAB01T1.VEC", MemberT1, true},
		{"EDAB01T2.VEC", MemberT2, true},
		{"EDAB01T3.VEC", MemberT3, true},
		{"EDAB01S1.VEC", MemberS1, true},
		{"EDAB01SE.DIC", MemberDIC, true},
		{"EDAB01SE.GEN", MemberGEN, true},
		{"EDAB01SE.SCD", MemberSCD, true},
		{"EDAB01XX.VEC", 0, false},
		{"e0000a01.thf", 0, false},
		{"notes.txt", 0, false},
	}
	for _, tt := range tests {
		got, ok := Classify(tt.name)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Fatalf("Classify(%q) = (%v, %v), want (%v, %v)", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDirSourceMandatoryOnly(t *testing.T) {
	dir := writeLot(t, lotFiles)
	b, err := LoadPath(context.Background(), dir)
	if err != nil {
		t.Fatalf("LoadPath: %v", err)
	}
	if got := string(b.THF()); got != lotFiles["E0000A01.THF"] {
		t.Fatalf("THF = %q", got)
	}
	if b.Name(MemberT3) != "EDAB01T3.VEC" {
		t.Fatalf("Name(T3) = %q", b.Name(MemberT3))
	}
	if b.DIC() != nil || b.GEN() != nil || b.SCD() != nil {
		t.Fatal("optional members should be nil when absent")
	}
	if b.Has(MemberDIC) {
		t.Fatal("Has(DIC) = true")
	}
	if got := len(b.Present()); got != 7 {
		t.Fatalf("Present() has %d members, want 7", got)
	}
}

func TestDirSourceWithOptionalMembers(t *testing.T) {
	files := withoutFile(lotFiles, "")
	for k, v := range optionalFiles {
		files[k] = v
	}
	b, err := LoadPath(context.Background(), writeLot(t, files))
	if err != nil {
		t.Fatalf("LoadPath: %v", err)
	}
	if string(b.GEN()) != optionalFiles["EDAB01SE.GEN"] {
		t.Fatalf("GEN = %q", b.GEN())
	}
	if len(b.Present()) != 10 {
		t.Fatalf("Present() = %v", b.Present())
	}
}

func TestDirSourceIncomplete(t *testing.T) {
	for _, name := range []string{
		"E0000A01.THF", "EDAB01SE.GEO", "EDAB01SE.QAL",
		"EDAB01T1.VEC", "EDAB01T2.VEC", "EDAB01T3.VEC", "EDAB01S1.VEC",
	} {
		dir := writeLot(t, withoutFile(lotFiles, name))
		b, err := LoadPath(context.Background(), dir)
		if !errors.Is(err, ErrIncompleteBundle) {
			t.Fatalf("without %s: err = %v, want ErrIncompleteBundle", name, err)
		}
		if b != nil {
			t.Fatalf("without %s: partial bundle returned", name)
		}
		var inc *IncompleteError
		if !errors.As(err, &inc) || len(inc.Missing) != 1 {
			t.Fatalf("without %s: IncompleteError = %+v", name, inc)
		}
	}
}

func TestEmptyMandatoryMemberIsIncomplete(t *testing.T) {
	files := withoutFile(lotFiles, "")
	files["EDAB01SE.QAL"] = ""
	_, err := LoadPath(context.Background(), writeLot(t, files))
	if !errors.Is(err, ErrIncompleteBundle) {
		t.Fatalf("err = %v, want ErrIncompleteBundle", err)
	}
}

func TestManifestSourceMatchesDirSource(t *testing.T) {
	dir := writeLot(t, lotFiles)
	fromDir, err := LoadPath(context.Background(), dir)
	if err != nil {
		t.Fatalf("LoadPath(dir): %v", err)
	}
	src, err := Open(filepath.Join(dir, "E0000A01.THF"))
	if err != nil {
		t.Fatalf("Open(manifest): %v", err)
	}
	if _, ok := src.(*ManifestSource); !ok {
		t.Fatalf("Open(manifest) = %T, want *ManifestSource", src)
	}
	fromManifest, err := Load(context.Background(), src)
	if err != nil {
		t.Fatalf("Load(manifest): %v", err)
	}
	assertSameBundle(t, fromDir, fromManifest)
}

func TestOpenErrors(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing.THF")); !errors.Is(err, ErrSourceNotFound) {
		t.Fatalf("Open(missing) err = %v, want ErrSourceNotFound", err)
	}
	dir := writeLot(t, map[string]string{"lot.zip": "PK"})
	if _, err := Open(filepath.Join(dir, "lot.zip")); !errors.Is(err, ErrUnsupportedSource) {
		t.Fatalf("Open(zip) err = %v, want ErrUnsupportedSource", err)
	}
}

func TestListMembers(t *testing.T) {
	dir := writeLot(t, lotFiles)
	names, err := ListMembers(filepath.Join(dir, "E0000A01.THF"))
	if err != nil {
		t.Fatalf("ListMembers: %v", err)
	}
	if len(names) != len(lotFiles) {
		t.Fatalf("ListMembers returned %d names, want %d", len(names), len(lotFiles))
	}
}

func buildTar(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	if err := tw.WriteHeader(&tar.Header{Name: "edigeo-740240000A01/", Typeflag: tar.TypeDir, Mode: 0o755}); err != nil {
		t.Fatalf("WriteHeader(dir): %v", err)
	}
	for name, content := range files {
		hdr := &tar.Header{
			Name:     "edigeo-740240000A01/" + name,
			Typeflag: tar.TypeReg,
			Mode:     0o644,
			Size:     int64(len(content)),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("WriteHeader(%s): %v", name, err)
		}
		if _, err := io.WriteString(tw, content); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("tar close: %v", err)
	}
	return buf.Bytes()
}

func compressWith(t *testing.T, c Compression, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	var w io.WriteCloser
	switch c {
	case CompressionNone:
		return data
	case CompressionGzip:
		w = gzip.NewWriter(&buf)
	case CompressionZstd:
		enc, err := zstd.NewWriter(&buf)
		if err != nil {
			t.Fatalf("zstd.NewWriter: %v", err)
		}
		w = enc
	case CompressionLZ4:
		w = lz4.NewWriter(&buf)
	case CompressionSnappy:
		w = s2.NewWriter(&buf)
	default:
		t.Fatalf("no test writer for %s", c)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("%s write: %v", c, err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("%s close: %v", c, err)
	}
	return buf.Bytes()
}

func TestArchiveSourceCodecs(t *testing.T) {
	dir := writeLot(t, lotFiles)
	fromDir, err := LoadPath(context.Background(), dir)
	if err != nil {
		t.Fatalf("LoadPath(dir): %v", err)
	}
	raw := buildTar(t, lotFiles)

	tests := []struct {
		file  string
		codec Compression
	}{
		{"lot.tar", CompressionNone},
		{"lot.tar.gz", CompressionGzip},
		{"lot.tgz", CompressionGzip},
		{"lot.tar.zst", CompressionZstd},
		{"lot.tar.lz4", CompressionLZ4},
		{"lot.tar.sz", CompressionSnappy},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			p := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(p, compressWith(t, tt.codec, raw), 0o644); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			src, err := Open(p)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			as, ok := src.(*ArchiveSource)
			if !ok {
				t.Fatalf("Open = %T, want *ArchiveSource", src)
			}
			if as.compression != tt.codec {
				t.Fatalf("compression = %s, want %s", as.compression, tt.codec)
			}
			fromArchive, err := Load(context.Background(), src)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			assertSameBundle(t, fromDir, fromArchive)
		})
	}
}

func TestArchiveIncomplete(t *testing.T) {
	raw := buildTar(t, withoutFile(lotFiles, "EDAB01S1.VEC"))
	b, err := ReadArchive(context.Background(), bytes.NewReader(raw), CompressionNone)
	if err != nil {
		t.Fatalf("ReadArchive: %v", err)
	}
	if err := b.Validate(); !errors.Is(err, ErrIncompleteBundle) {
		t.Fatalf("Validate err = %v, want ErrIncompleteBundle", err)
	}
}

func TestArchiveCorrupt(t *testing.T) {
	_, err := ReadArchive(context.Background(), bytes.NewReader([]byte("definitely not gzip")), CompressionGzip)
	if !errors.Is(err, ErrCorruptArchive) {
		t.Fatalf("err = %v, want ErrCorruptArchive", err)
	}
}

func TestCompressionFromName(t *testing.T) {
	tests := map[string]Compression{
		"edigeo-740240000A01.tar.bz2": CompressionBzip2,
		"lot.TBZ2":                    CompressionBzip2,
		"lot.tar.gz":                  CompressionGzip,
		"lot.tar":                     CompressionNone,
	}
	for name, want := range tests {
		got, ok := CompressionFromName(name)
		if !ok || got != want {
			t.Fatalf("CompressionFromName(%q) = (%s, %v), want %s", name, got, ok, want)
		}
	}
	if _, ok := CompressionFromName("lot.zip"); ok {
		t.Fatal("CompressionFromName(lot.zip) matched")
	}
}

func TestFingerprint(t *testing.T) {
	b, err := LoadPath(context.Background(), writeLot(t, lotFiles))
	if err != nil {
		t.Fatalf("LoadPath: %v", err)
	}
	fp := b.Fingerprint(MemberTHF)
	if len(fp) != 64 {
		t.Fatalf("Fingerprint length = %d, want 64", len(fp))
	}
	if fp == b.Fingerprint(MemberGEO) {
		t.Fatal("distinct members share a fingerprint")
	}
	if b.Fingerprint(MemberDIC) != "" {
		t.Fatal("absent member has a fingerprint")
	}
}

func TestLoadHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := LoadPath(ctx, writeLot(t, lotFiles)); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func assertSameBundle(t *testing.T, want, got *Bundle) {
	t.Helper()
	for _, m := range Members() {
		if want.Has(m) != got.Has(m) {
			t.Fatalf("%s: Has = %v, want %v", m, got.Has(m), want.Has(m))
		}
		if !bytes.Equal(want.Data(m), got.Data(m)) {
			t.Fatalf("%s: data differs", m)
		}
		if want.Fingerprint(m) != got.Fingerprint(m) {
			t.Fatalf("%s: fingerprint differs", m)
		}
	}
}

func TestArchiveBzip2Lot(t *testing.T) {
	fromDir, err := LoadPath(context.Background(), writeLot(t, lotFiles))
	if err != nil {
		t.Fatalf("LoadPath(dir): %v", err)
	}
	src, err := Open(filepath.Join("testdata", "lot.tar.bz2"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if as, ok := src.(*ArchiveSource); !ok || as.compression != CompressionBzip2 {
		t.Fatalf("Open = %v, want bzip2 archive", src)
	}
	fromArchive, err := Load(context.Background(), src)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertSameBundle(t, fromDir, fromArchive)
}

func TestAddStartsEachEntryOnNewLine(t *testing.T) {
	b := New()
	b.Add(MemberT1, "A_T1.VEC", []byte("BOMT 08:A_T1.VEC\r\nEOMT 00:"))
	b.Add(MemberT1, "B_T1.VEC", []byte("BOMT 08:B_T1.VEC\r\nEOMT 00:\r\n"))
	want := "BOMT 08:A_T1.VEC\r\nEOMT 00:\r\nBOMT 08:B_T1.VEC\r\nEOMT 00:\r\n"
	if got := string(b.Data(MemberT1)); got != want {
		t.Fatalf("Data = %q, want %q", got, want)
	}
	if got := b.Name(MemberT1); got != "A_T1.VEC+B_T1.VEC" {
		t.Fatalf("Name = %q", got)
	}

	terminated := New()
	terminated.Add(MemberT1, "A_T1.VEC", []byte("A\n"))
	terminated.Add(MemberT1, "B_T1.VEC", []byte("B\n"))
	if got := string(terminated.Data(MemberT1)); got != "A\nB\n" {
		t.Fatalf("Data = %q, want no separator after a final newline", got)
	}
}

type tarEntry struct {
	name    string
	content string
}

func buildOrderedTar(t *testing.T, entries []tarEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.name, Typeflag: tar.TypeReg, Mode: 0o644, Size: int64(len(e.content))}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("WriteHeader(%s): %v", e.name, err)
		}
		if _, err := io.WriteString(tw, e.content); err != nil {
			t.Fatalf("write %s: %v", e.name, err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("tar close: %v", err)
	}
	return buf.Bytes()
}

func TestArchiveJoinsSameSlotInNameOrder(t *testing.T) {
	files := withoutFile(lotFiles, "EDAB01T1.VEC")
	files["A_T1.VEC"] = "A\r\n"
	files["B_T1.VEC"] = "B\r\n"
	fromDir, err := LoadPath(context.Background(), writeLot(t, files))
	if err != nil {
		t.Fatalf("LoadPath(dir): %v", err)
	}

	// Reverse name order in the stream.
	names := []string{"README.txt", "EDAB01XX.VEC.o", "EDAB01T3.VEC", "EDAB01T2.VEC", "EDAB01SE.QAL",
		"EDAB01SE.GEO", "EDAB01S1.VEC", "E0000A01.THF", "B_T1.VEC", "A_T1.VEC"}
	var entries []tarEntry
	for _, n := range names {
		entries = append(entries, tarEntry{name: "lot/" + n, content: files[n]})
	}
	fromArchive, err := ReadArchive(context.Background(), bytes.NewReader(buildOrderedTar(t, entries)), CompressionNone)
	if err != nil {
		t.Fatalf("ReadArchive: %v", err)
	}
	if got := string(fromArchive.Data(MemberT1)); got != "A\r\nB\r\n" {
		t.Fatalf("T1 = %q, want %q", got, "A\r\nB\r\n")
	}
	if got := fromArchive.Name(MemberT1); got != "A_T1.VEC+B_T1.VEC" {
		t.Fatalf("T1 name = %q", got)
	}
	assertSameBundle(t, fromDir, fromArchive)
}

func TestDirSourceFollowsSymlinks(t *testing.T) {
	target := writeLot(t, lotFiles)
	linked := t.TempDir()
	for name := range lotFiles {
		if err := os.Symlink(filepath.Join(target, name), filepath.Join(linked, name)); err != nil {
			t.Skipf("Symlink: %v", err)
		}
	}
	// Dangling links and links to directories are ignored.
	if err := os.Symlink(filepath.Join(target, "missing.DIC"), filepath.Join(linked, "EDAB01SE.DIC")); err != nil {
		t.Fatalf("Symlink(dangling): %v", err)
	}
	if err := os.Symlink(t.TempDir(), filepath.Join(linked, "EDAB01SE.GEN")); err != nil {
		t.Fatalf("Symlink(dir): %v", err)
	}

	want, err := LoadPath(context.Background(), target)
	if err != nil {
		t.Fatalf("LoadPath(target): %v", err)
	}
	got, err := LoadPath(context.Background(), linked)
	if err != nil {
		t.Fatalf("LoadPath(linked): %v", err)
	}
	assertSameBundle(t, want, got)

	viaManifest, err := LoadPath(context.Background(), filepath.Join(linked, "E0000A01.THF"))
	if err != nil {
		t.Fatalf("LoadPath(linked manifest): %v", err)
	}
	assertSameBundle(t, want, viaManifest)
}
