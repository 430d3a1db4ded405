// Package pdn implements a Portable Draughts Notation reader and writer.
// It handles the hyphen-movetext subset of the format: tag pair sections,
// numbered movetext with game results, and same-line brace comments. Files
// may hold any number of games, and may be zstd-compressed.
package pdn

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/fenwick/draughtsman/action"
)

// A Token is one syntactic element of a PDN file.
type Token uint8

const (
	UndefinedToken Token = iota
	TagToken
	ResultToken
	MoveNumberToken
	MovetextToken
	CaptureToken
	VariationToken
)

type pdndatum struct {
	token Token
	regex *regexp.Regexp
}

var PDNRegexes []pdndatum

const (
	TagRegex        = `^\[(?P<key>[A-Za-z0-9_]+)\s+"(?P<value>[^"]*)"\]\s*$`
	ResultRegex     = `^(?P<result>1-0|0-1|1/2-1/2|2-0|0-2|1-1|\*)$`
	MoveNumberRegex = `^(?P<number>\d+)\.(?:\.\.)?(?P<rest>\S*)$`
	MovetextRegex   = `^(?P<movetext>\d+(?:-\d+)+)$`
	CaptureRegex    = `^\d+(?:x\d+)+$`
	VariationRegex  = `^[()]`
)

var (
	compiledTagRegexp     *regexp.Regexp
	compiledCommentRegexp *regexp.Regexp
)

// init initializes the regexp list.
func init() {
	// Important note: ResultRegex is defined BEFORE MovetextRegex. That is
	// because results like `1-0` and `1-1` also scan as hyphen movetext,
	// and must win.
	compiledTagRegexp = regexp.MustCompile(TagRegex)
	compiledCommentRegexp = regexp.MustCompile(`\{[^{}]*\}`)

	PDNRegexes = []pdndatum{
		{ResultToken, regexp.MustCompile(ResultRegex)},
		{MoveNumberToken, regexp.MustCompile(MoveNumberRegex)},
		{MovetextToken, regexp.MustCompile(MovetextRegex)},
		{CaptureToken, regexp.MustCompile(CaptureRegex)},
		{VariationToken, regexp.MustCompile(VariationRegex)},
	}
}

type parser struct {
	lastToken Token
	lineno    int
	current   *Record
	records   []*Record
}

func newParser() *parser {
	return &parser{current: NewRecord()}
}

// flush closes out the game being accumulated, if there is one.
func (p *parser) flush() {
	if !p.current.Empty() {
		p.records = append(p.records, p.current)
	}
	p.current = NewRecord()
}

func (p *parser) addTag(key, value string) {
	// A tag pair after movetext opens the next game in the file.
	if len(p.current.Actions) > 0 || p.current.Result != "" {
		p.flush()
	}
	p.current.Tags[key] = value
}

func (p *parser) addField(token Token, match []string, field string) error {
	switch token {
	case ResultToken:
		if p.current.Result != "" {
			return fmt.Errorf("line %d: game already has result %v", p.lineno, p.current.Result)
		}
		p.current.Result = match[1]
	case MoveNumberToken, MovetextToken:
		// Movetext right after a result means a headerless next game.
		if p.lastToken == ResultToken {
			p.flush()
		}
		if token == MoveNumberToken {
			// `1.` with the movetext attached, as in `1.11-15`, carries
			// the rest of the field along.
			if rest := match[2]; rest != "" {
				return p.parseField(rest)
			}
			return nil
		}
		a, err := action.NewFromMovetext(match[1])
		if err != nil {
			return fmt.Errorf("line %d: %w", p.lineno, err)
		}
		p.current.Actions = append(p.current.Actions, a)
	case CaptureToken:
		return fmt.Errorf("line %d: capture notation '%v' is not supported, captures use hyphen movetext", p.lineno, field)
	case VariationToken:
		return fmt.Errorf("line %d: variations are not supported", p.lineno)
	}
	return nil
}

func (p *parser) parseField(field string) error {
	for _, datum := range PDNRegexes {
		match := datum.regex.FindStringSubmatch(field)
		if match != nil {
			err := p.addField(datum.token, match, field)
			if err != nil {
				return err
			}
			p.lastToken = datum.token
			return nil
		}
	}
	return fmt.Errorf("line %d: no match found for '%v'", p.lineno, field)
}

func (p *parser) parseLine(line string) error {
	p.lineno++

	if match := compiledTagRegexp.FindStringSubmatch(line); match != nil {
		p.addTag(match[1], match[2])
		p.lastToken = TagToken
		return nil
	}

	// Brace comments are annotations; drop them. They cannot span lines,
	// so a brace surviving the strip is an error.
	stripped := compiledCommentRegexp.ReplaceAllString(line, " ")
	if strings.ContainsAny(stripped, "{}") {
		return fmt.Errorf("line %d: unterminated comment", p.lineno)
	}

	for _, field := range strings.Fields(stripped) {
		if err := p.parseField(field); err != nil {
			return err
		}
	}
	return nil
}

// encodingOrFirstLine reads the first line of the file and decides the
// character encoding from it. A UTF-8 byte order mark switches the reader
// to UTF-8; anything else means the default PDN encoding, ISO 8859-1.
func encodingOrFirstLine(reader io.Reader) (string, string, error) {
	const bufSize = 512
	buf := make([]byte, bufSize)
	n := 0
	for n < bufSize {
		// non buffered byte-by-byte
		if _, err := reader.Read(buf[n : n+1]); err != nil {
			if err == io.EOF {
				break
			}
			return "", "", err
		}
		if buf[n] == 0xa {
			break
		}
		n++
	}
	firstLine := bytes.TrimSuffix(buf[:n], []byte{0xd})

	if rest, found := bytes.CutPrefix(firstLine, []byte{0xef, 0xbb, 0xbf}); found {
		return "utf8", string(rest), nil
	}
	decoder := charmap.ISO8859_1.NewDecoder()
	result, _, err := transform.Bytes(decoder, firstLine)
	if err != nil {
		return "", "", err
	}
	return "", string(result), nil
}

// ParseReader parses every game in a PDN stream, in file order.
func ParseReader(reader io.Reader) ([]*Record, error) {
	p := newParser()

	enc, firstLine, err := encodingOrFirstLine(reader)
	if err != nil {
		return nil, err
	}
	var scanner *bufio.Scanner
	if enc != "utf8" {
		r := transform.NewReader(reader, charmap.ISO8859_1.NewDecoder())
		scanner = bufio.NewScanner(r)
	} else {
		scanner = bufio.NewScanner(reader)
	}
	if err = p.parseLine(firstLine); err != nil {
		return nil, err
	}

	for scanner.Scan() {
		if err = p.parseLine(scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err = scanner.Err(); err != nil {
		return nil, err
	}
	p.flush()
	log.Debug().Int("games", len(p.records)).Msg("parsed pdn stream")
	return p.records, nil
}

// ParseFile parses every game in a PDN file. Files with a .zst extension
// are decompressed on the fly.
func ParseFile(filename string) ([]*Record, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.HasSuffix(strings.ToLower(filename), ".zst") {
		decoder, err := zstd.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer decoder.Close()
		return ParseReader(decoder)
	}
	return ParseReader(f)
}

// IsPDNFile says whether the filename looks like a PDN file we can parse.
func IsPDNFile(filename string) bool {
	lower := strings.ToLower(filename)
	return strings.HasSuffix(lower, ".pdn") || strings.HasSuffix(lower, ".pdn.zst")
}
