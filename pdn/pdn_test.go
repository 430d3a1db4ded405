package pdn

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"

	"github.com/fenwick/draughtsman/action"
)

func TestParseSingle(t *testing.T) {
	records, err := ParseFile("./testdata/single.pdn")
	assert.Nil(t, err)
	assert.Equal(t, 1, len(records))

	r := records[0]
	assert.Equal(t, "Double Corner Classic", r.Tags["Event"])
	assert.Equal(t, "Brooklyn", r.Tags["Site"])
	assert.Equal(t, "1-0", r.Tags["Result"])
	assert.Equal(t, "1-0", r.Result)
	assert.Equal(t, 9, len(r.Actions))

	assert.Equal(t, "11-15", r.Actions[0].Movetext())
	assert.Equal(t, action.ActionTypeMove, r.Actions[0].Type())
	assert.Equal(t, "12-19", r.Actions[6].Movetext())
	assert.Equal(t, action.ActionTypeJump, r.Actions[6].Type())
}

func TestParseMulti(t *testing.T) {
	records, err := ParseFile("./testdata/multi.pdn")
	assert.Nil(t, err)
	assert.Equal(t, 2, len(records))

	assert.Equal(t, "1", records[0].Tags["Round"])
	assert.Equal(t, "1/2-1/2", records[0].Result)
	assert.Equal(t, 3, len(records[0].Actions))

	assert.Equal(t, "2", records[1].Tags["Round"])
	assert.Equal(t, "*", records[1].Result)
	assert.Equal(t, 3, len(records[1].Actions))
}

func TestParseLatin1(t *testing.T) {
	records, err := ParseFile("./testdata/latin1.pdn")
	assert.Nil(t, err)
	assert.Equal(t, 1, len(records))
	assert.Equal(t, "Frédéric", records[0].Tags["White"])
	assert.Equal(t, "0-1", records[0].Result)
}

func TestParseUTF8WithBOM(t *testing.T) {
	records, err := ParseFile("./testdata/bom.pdn")
	assert.Nil(t, err)
	assert.Equal(t, 1, len(records))
	assert.Equal(t, "Turnering", records[0].Tags["Event"])
	assert.Equal(t, "Søren", records[0].Tags["White"])
}

func TestParseHeaderless(t *testing.T) {
	pdn := "1. 11-15 23-19 1-0\n1. 9-13 22-18 *\n"
	records, err := ParseReader(strings.NewReader(pdn))
	assert.Nil(t, err)
	assert.Equal(t, 2, len(records))
	assert.Equal(t, "1-0", records[0].Result)
	assert.Equal(t, 2, len(records[0].Actions))
	assert.Equal(t, "*", records[1].Result)
	assert.Equal(t, 2, len(records[1].Actions))
}

func TestParseTagsOnly(t *testing.T) {
	pdn := "[Event \"Forfeit\"]\n[Result \"0-1\"]\n"
	records, err := ParseReader(strings.NewReader(pdn))
	assert.Nil(t, err)
	assert.Equal(t, 1, len(records))
	assert.Equal(t, 0, len(records[0].Actions))
}

func TestParseAttachedMoveNumbers(t *testing.T) {
	pdn := "1.11-15 23-19 2...8-11 *\n"
	records, err := ParseReader(strings.NewReader(pdn))
	assert.Nil(t, err)
	assert.Equal(t, 1, len(records))
	assert.Equal(t, []string{"11-15", "23-19", "8-11"}, records[0].Movetexts())
}

func TestParseComments(t *testing.T) {
	pdn := "1. 11-15 {a strong opening} 23-19 {White answers, as in 1847} *\n"
	records, err := ParseReader(strings.NewReader(pdn))
	assert.Nil(t, err)
	assert.Equal(t, 2, len(records[0].Actions))

	_, err = ParseReader(strings.NewReader("1. 11-15 {runs\noff the line} *\n"))
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "unterminated comment")
}

func TestParseCaptureNotationRejected(t *testing.T) {
	_, err := ParseReader(strings.NewReader("1. 11-15 23-19 2. 15x24 *\n"))
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "not supported")
	assert.Contains(t, err.Error(), "line 1")
}

func TestParseVariationsRejected(t *testing.T) {
	_, err := ParseReader(strings.NewReader("1. 11-15 (9-13 22-18) 23-19 *\n"))
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "variations")
}

func TestParseBadMovetext(t *testing.T) {
	_, err := ParseReader(strings.NewReader("1. 11-15\n2. 11-99 *\n"))
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "line 2")

	var pve *action.PositionValueError
	assert.True(t, errors.As(err, &pve))
	assert.Equal(t, "98", pve.Position)
}

func TestParseGarbageLine(t *testing.T) {
	_, err := ParseReader(strings.NewReader("1. 11-15 kingme *\n"))
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "no match found")
}

func TestRoundTrip(t *testing.T) {
	records, err := ParseFile("./testdata/single.pdn")
	assert.Nil(t, err)
	assert.Equal(t, 1, len(records))

	reparsed, err := ParseReader(strings.NewReader(records[0].Pdn()))
	assert.Nil(t, err)
	assert.Equal(t, 1, len(reparsed))
	assert.Equal(t, records[0].Tags, reparsed[0].Tags)
	assert.Equal(t, records[0].Actions, reparsed[0].Actions)
	assert.Equal(t, records[0].Result, reparsed[0].Result)
}

func TestPdnTagOrder(t *testing.T) {
	r := NewRecord()
	r.Tags["Annotator"] = "nobody"
	r.Tags["Black"] = "Ezra"
	r.Tags["Event"] = "Casual"
	r.Tags["GameType"] = "21"
	r.Result = "1-0"

	out := r.Pdn()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Equal(t, []string{
		`[Event "Casual"]`,
		`[Black "Ezra"]`,
		`[Annotator "nobody"]`,
		`[GameType "21"]`,
		``,
		`1-0`,
	}, lines)
}

func TestPdnLineWrap(t *testing.T) {
	r := NewRecord()
	for i := 0; i < 60; i++ {
		mt := "9-13"
		if i%2 == 1 {
			mt = "13-9"
		}
		a, err := action.NewFromMovetext(mt)
		assert.Nil(t, err)
		r.Actions = append(r.Actions, a)
	}

	out := r.Pdn()
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		assert.LessOrEqual(t, len(line), pdnLineWidth)
	}

	reparsed, err := ParseReader(strings.NewReader(out))
	assert.Nil(t, err)
	assert.Equal(t, 1, len(reparsed))
	assert.Equal(t, r.Actions, reparsed[0].Actions)
	assert.Equal(t, "*", reparsed[0].Result)
}

func TestFingerprint(t *testing.T) {
	records, err := ParseFile("./testdata/single.pdn")
	assert.Nil(t, err)

	twin := NewRecord()
	twin.Tags["Event"] = "A different event entirely"
	twin.Actions = append(twin.Actions, records[0].Actions...)
	assert.Equal(t, records[0].Fingerprint(), twin.Fingerprint())

	other, err := ParseFile("./testdata/multi.pdn")
	assert.Nil(t, err)
	assert.NotEqual(t, records[0].Fingerprint(), other[0].Fingerprint())
	assert.NotEqual(t, other[0].Fingerprint(), other[1].Fingerprint())
}

func TestParseZstd(t *testing.T) {
	plain, err := os.ReadFile("./testdata/single.pdn")
	assert.Nil(t, err)

	compressed := filepath.Join(t.TempDir(), "single.pdn.zst")
	f, err := os.Create(compressed)
	assert.Nil(t, err)
	encoder, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	assert.Nil(t, err)
	_, err = encoder.Write(plain)
	assert.Nil(t, err)
	assert.Nil(t, encoder.Close())
	assert.Nil(t, f.Close())

	records, err := ParseFile(compressed)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(records))
	assert.Equal(t, 9, len(records[0].Actions))
	assert.Equal(t, "1-0", records[0].Result)
}

func TestIsPDNFile(t *testing.T) {
	assert.True(t, IsPDNFile("games.pdn"))
	assert.True(t, IsPDNFile("games.PDN"))
	assert.True(t, IsPDNFile("archive/games.pdn.zst"))
	assert.False(t, IsPDNFile("games.pgn"))
	assert.False(t, IsPDNFile("games.zst"))
	assert.False(t, IsPDNFile("games.txt"))
}

func TestParseEmpty(t *testing.T) {
	records, err := ParseReader(strings.NewReader(""))
	assert.Nil(t, err)
	assert.Equal(t, 0, len(records))
}
