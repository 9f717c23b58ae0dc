package conversion

import (
	"bytes"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/minio/sha256-simd"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/spacemeshos/poc1to2/plot"
	"github.com/spacemeshos/poc1to2/shared"
)

const testPlotName = "11253871103436815155_0_10_10"

// genPlot writes a plot of random content and returns its path and content.
func genPlot(t *testing.T, dir, name string, nonces int) (string, []byte) {
	t.Helper()

	data := make([]byte, nonces*shared.NonceSize)
	rand.New(rand.NewSource(int64(nonces))).Read(data)

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, shared.OwnerReadWrite))
	return path, data
}

// poc2 is a reference model of the conversion: record n of scoop s keeps its
// first hash and takes the second hash of record n of the mirrored scoop.
func poc2(poc1 []byte, nonces int) []byte {
	out := make([]byte, len(poc1))
	record := func(scoop, nonce int) int {
		return (scoop*nonces + nonce) * shared.ScoopSize
	}
	for s := 0; s < shared.ScoopsPerNonce; s++ {
		m := shared.ScoopsPerNonce - 1 - s
		for n := 0; n < nonces; n++ {
			dst, src := record(s, n), record(m, n)
			copy(out[dst:dst+shared.HashSize], poc1[dst:dst+shared.HashSize])
			copy(out[dst+shared.HashSize:dst+shared.ScoopSize], poc1[src+shared.HashSize:src+shared.ScoopSize])
		}
	}
	return out
}

func fingerprint(t *testing.T, path string) [sha256.Size]byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return sha256.Sum256(data)
}

func TestConvert_InPlace(t *testing.T) {
	dir := t.TempDir()
	path, poc1 := genPlot(t, dir, testPlotName, 10)

	d, err := Convert(path, "", WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	require.True(t, d.InPlace)

	_, err = os.Stat(path)
	require.ErrorIs(t, err, os.ErrNotExist)

	out := filepath.Join(dir, "11253871103436815155_0_10")
	require.Equal(t, out, d.OutputPath())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Len(t, data, 2621440)
	require.Equal(t, poc2(poc1, 10), data)
}

func TestConvert_FirstHalvesUnchanged(t *testing.T) {
	dir := t.TempDir()
	path, poc1 := genPlot(t, dir, "1_0_3_3", 3)

	d, err := Convert(path, "")
	require.NoError(t, err)

	data, err := os.ReadFile(d.OutputPath())
	require.NoError(t, err)
	require.Len(t, data, len(poc1))

	for off := 0; off < len(data); off += shared.ScoopSize {
		require.Equal(t, poc1[off:off+shared.HashSize], data[off:off+shared.HashSize], "record at %d", off)
	}
	require.NotEqual(t, poc1, data)
}

func TestConvert_Copy(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	path, poc1 := genPlot(t, src, testPlotName, 10)
	before := fingerprint(t, path)

	d, err := Convert(path, out, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	require.False(t, d.InPlace)
	require.Equal(t, filepath.Join(out, "11253871103436815155_0_10"), d.OutputPath())

	require.Equal(t, before, fingerprint(t, path))

	data, err := os.ReadFile(d.OutputPath())
	require.NoError(t, err)
	require.Equal(t, poc2(poc1, 10), data)

	// Same bytes as an in-place conversion of the same plot.
	inPlaceDir := t.TempDir()
	inPlacePath, _ := genPlot(t, inPlaceDir, testPlotName, 10)
	inPlace, err := Convert(inPlacePath, "")
	require.NoError(t, err)
	require.Equal(t, fingerprint(t, inPlace.OutputPath()), fingerprint(t, d.OutputPath()))
}

func TestConvert_CopyIntoSourceDir(t *testing.T) {
	dir := t.TempDir()
	path, poc1 := genPlot(t, dir, "5_20_2_2", 2)

	d, err := Convert(path, dir)
	require.NoError(t, err)

	src, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, poc1, src)

	data, err := os.ReadFile(filepath.Join(dir, "5_20_2"))
	require.NoError(t, err)
	require.Equal(t, poc2(poc1, 2), data)
	require.Equal(t, filepath.Join(dir, "5_20_2"), d.OutputPath())
}

func TestConvert_TwiceIsIdentity(t *testing.T) {
	dir := t.TempDir()
	path, poc1 := genPlot(t, dir, "42_1000_4_4", 4)

	d, err := Convert(path, "")
	require.NoError(t, err)

	// Give the converted plot its PoC1 name back and run the same pass again.
	require.NoError(t, os.Rename(d.OutputPath(), path))
	d, err = Convert(path, "")
	require.NoError(t, err)

	data, err := os.ReadFile(d.OutputPath())
	require.NoError(t, err)
	require.Equal(t, poc1, data)
}

func TestConvert_Progress(t *testing.T) {
	dir := t.TempDir()
	path, _ := genPlot(t, dir, "1_0_1_1", 1)

	var progress bytes.Buffer
	_, err := Convert(path, "", WithProgress(&progress))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(progress.String()), "\n")
	require.Len(t, lines, shared.NumScoopPairs+2)
	require.Equal(t, "start processing scoops", lines[0])
	require.Equal(t, "0/4096", lines[1])
	require.Equal(t, "2047/2049", lines[len(lines)-2])
	require.Equal(t, "finished processing scoops", lines[len(lines)-1])
}

func TestConvert_RejectsBeforeTouchingFile(t *testing.T) {
	dir := t.TempDir()
	path, poc1 := genPlot(t, dir, "1_0_2_1", 2)

	_, err := Convert(path, "")
	require.ErrorIs(t, err, shared.ErrUnsupportedLayout)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, poc1, data)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestConverter_SizeChangedAfterValidation(t *testing.T) {
	dir := t.TempDir()
	path, _ := genPlot(t, dir, "1_0_1_1", 1)

	d, err := plot.NewDescriptor(path, "")
	require.NoError(t, err)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	require.NoError(t, err)
	_, err = f.Write([]byte{0})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	c, err := NewConverter(d)
	require.NoError(t, err)
	require.ErrorIs(t, c.Convert(), shared.ErrSizeMismatch)

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestConverter_ConvertOnce(t *testing.T) {
	dir := t.TempDir()
	path, _ := genPlot(t, dir, "1_0_1_1", 1)

	d, err := plot.NewDescriptor(path, t.TempDir())
	require.NoError(t, err)

	c, err := NewConverter(d, WithDiskSpaceCheck(false))
	require.NoError(t, err)
	require.NoError(t, c.Convert())
	require.ErrorIs(t, c.Convert(), ErrAlreadyConverted)
}

func TestNewConverter_Options(t *testing.T) {
	_, err := NewConverter(nil)
	require.Error(t, err)

	d := &plot.Descriptor{Name: plot.Name{Nonces: 1, Stagger: 1}, Size: shared.NonceSize}
	_, err = NewConverter(d, WithLogger(nil))
	require.Error(t, err)

	c, err := NewConverter(d, WithLogger(zap.NewNop()), WithProgress(nil), WithDiskSpaceCheck(false))
	require.NoError(t, err)
	require.False(t, c.opts.spaceCheck)
	require.Nil(t, c.opts.progress)
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	path, _ := genPlot(t, dir, "1_0_1_1", 1)

	d, err := plot.NewDescriptor(path, "")
	require.NoError(t, err)

	ok, err := Exists(d)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, os.WriteFile(d.OutputPath(), nil, shared.OwnerReadWrite))
	ok, err = Exists(d)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestConvert_InPlaceBlockedRenameTarget(t *testing.T) {
	dir := t.TempDir()
	path, poc1 := genPlot(t, dir, "1_0_2_2", 2)

	blocker := filepath.Join(dir, "1_0_2")
	require.NoError(t, os.Mkdir(blocker, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(blocker, "keep"), []byte("x"), shared.OwnerReadWrite))

	var progress bytes.Buffer
	_, err := Convert(path, "", WithProgress(&progress))
	require.ErrorIs(t, err, shared.ErrIO)
	require.ErrorIs(t, err, shared.ErrNotRegularFile)

	var ioErr *shared.IOError
	require.ErrorAs(t, err, &ioErr)
	require.Equal(t, "rename", ioErr.Op)
	require.Empty(t, progress.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, poc1, data)

	info, err := os.Stat(blocker)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestConvert_InPlaceReplacesStaleOutputFile(t *testing.T) {
	dir := t.TempDir()
	path, poc1 := genPlot(t, dir, "1_0_2_2", 2)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1_0_2"), []byte("stale"), shared.OwnerReadWrite))

	d, err := Convert(path, "")
	require.NoError(t, err)

	data, err := os.ReadFile(d.OutputPath())
	require.NoError(t, err)
	require.Equal(t, poc2(poc1, 2), data)
}

func TestConvert_ZeroNonces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "9_0_0_0")
	require.NoError(t, os.WriteFile(path, nil, shared.OwnerReadWrite))

	out := t.TempDir()
	d, err := Convert(path, out)
	require.NoError(t, err)

	info, err := os.Stat(d.OutputPath())
	require.NoError(t, err)
	require.Zero(t, info.Size())

	d, err = Convert(path, "")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "9_0_0"), d.OutputPath())

	_, err = os.Stat(path)
	require.ErrorIs(t, err, os.ErrNotExist)
}
