package pdn

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash"
	"github.com/samber/lo"

	"github.com/fenwick/draughtsman/action"
)

// pdnLineWidth is where the writer wraps movetext lines.
const pdnLineWidth = 79

// rosterTags are written first and in this order; any other tags follow
// alphabetically.
var rosterTags = []string{"Event", "Site", "Date", "Round", "White", "Black", "Result"}

// A Record is one game out of a PDN file: its tag pairs, its actions in
// game order, and its result marker ("1-0", "1/2-1/2", "*" and friends, or
// empty when the game had no termination marker).
type Record struct {
	Tags    map[string]string
	Actions []action.Action
	Result  string
}

func NewRecord() *Record {
	return &Record{Tags: map[string]string{}}
}

// Empty is true for a record with no tags, actions or result.
func (r *Record) Empty() bool {
	return len(r.Tags) == 0 && len(r.Actions) == 0 && r.Result == ""
}

// Movetexts renders every action of the game, in order.
func (r *Record) Movetexts() []string {
	return lo.Map(r.Actions, func(a action.Action, idx int) string {
		return a.Movetext()
	})
}

// Fingerprint identifies a game by its move sequence alone, ignoring tags
// and result. Two records of the same game fingerprint identically however
// they were annotated.
func (r *Record) Fingerprint() uint64 {
	return xxhash.Sum64String(strings.Join(r.Movetexts(), " "))
}

func writeTags(s *strings.Builder, tags map[string]string) {
	for _, key := range rosterTags {
		if value, ok := tags[key]; ok {
			fmt.Fprintf(s, "[%s \"%s\"]\n", key, value)
		}
	}
	rest := lo.Filter(lo.Keys(tags), func(key string, idx int) bool {
		return !lo.Contains(rosterTags, key)
	})
	sort.Strings(rest)
	for _, key := range rest {
		fmt.Fprintf(s, "[%s \"%s\"]\n", key, tags[key])
	}
}

func writeMovetext(s *strings.Builder, actions []action.Action, result string) {
	line := ""
	write := func(chunk string) {
		switch {
		case line == "":
			line = chunk
		case len(line)+1+len(chunk) > pdnLineWidth:
			s.WriteString(line + "\n")
			line = chunk
		default:
			line += " " + chunk
		}
	}

	for i := 0; i < len(actions); i += 2 {
		chunk := fmt.Sprintf("%d. %s", i/2+1, actions[i].Movetext())
		if i+1 < len(actions) {
			chunk += " " + actions[i+1].Movetext()
		}
		write(chunk)
	}
	if result == "" {
		result = "*"
	}
	write(result)
	s.WriteString(line + "\n")
}

// Pdn returns the PDN representation of the record. Roster tags come first,
// then the remaining tags alphabetically, then the numbered movetext with
// two actions per number. A record without a result is terminated with "*",
// so the output always reparses as a single complete game.
func (r *Record) Pdn() string {
	var str strings.Builder
	if len(r.Tags) > 0 {
		writeTags(&str, r.Tags)
		str.WriteString("\n")
	}
	writeMovetext(&str, r.Actions, r.Result)
	return str.String()
}
