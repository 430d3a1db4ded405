// pdnscan walks PDN files and directories, parses every game in them, and
// reports per-file counts plus any games that appear more than once across
// the scanned set. It exits nonzero when a file fails to parse, and, with
// --strict, when duplicates are found.
package main

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/fenwick/draughtsman/action"
	"github.com/fenwick/draughtsman/config"
	"github.com/fenwick/draughtsman/pdn"
)

type FileReport struct {
	Path    string `yaml:"path"`
	Games   int    `yaml:"games"`
	Actions int    `yaml:"actions"`
	Jumps   int    `yaml:"jumps"`
	Error   string `yaml:"error,omitempty"`
}

type DuplicateReport struct {
	Fingerprint uint64   `yaml:"fingerprint"`
	Paths       []string `yaml:"paths"`
}

type ScanReport struct {
	ScannedAt  string            `yaml:"scanned_at"`
	Files      []FileReport      `yaml:"files"`
	Games      int               `yaml:"games"`
	Actions    int               `yaml:"actions"`
	Jumps      int               `yaml:"jumps"`
	Failures   int               `yaml:"failures"`
	Duplicates []DuplicateReport `yaml:"duplicates,omitempty"`
}

func usage(w io.Writer) {
	io.WriteString(w, "usage: pdnscan [flags] <file-or-directory>...\n")
	io.WriteString(w, "scans PDN files and reports game counts, parse failures and duplicate games\n")
}

// collectFiles expands the arguments into the files to scan. A directory is
// walked for PDN files; a file named outright is scanned whatever its
// extension.
func collectFiles(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && pdn.IsPDNFile(p) {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(files)
	return files, nil
}

// scanFile parses one file, returning its report and the fingerprint of
// every game in it. A parse failure lands in the report rather than
// aborting the scan.
func scanFile(path string) (FileReport, []uint64) {
	fr := FileReport{Path: path}
	records, err := pdn.ParseFile(path)
	if err != nil {
		fr.Error = err.Error()
		return fr, nil
	}
	fr.Games = len(records)
	fr.Actions = lo.SumBy(records, func(r *pdn.Record) int {
		return len(r.Actions)
	})
	fr.Jumps = lo.SumBy(records, func(r *pdn.Record) int {
		return lo.CountBy(r.Actions, func(a action.Action) bool {
			return a.Type() == action.ActionTypeJump
		})
	})
	return fr, lo.Map(records, func(r *pdn.Record, idx int) uint64 {
		return r.Fingerprint()
	})
}

// duplicates reduces the fingerprint index to the games seen in more than
// one place, in a stable order.
func duplicates(seen map[uint64][]string) []DuplicateReport {
	var dupes []DuplicateReport
	for print, paths := range seen {
		if len(paths) < 2 {
			continue
		}
		sort.Strings(paths)
		dupes = append(dupes, DuplicateReport{Fingerprint: print, Paths: paths})
	}
	sort.Slice(dupes, func(i, j int) bool {
		return dupes[i].Fingerprint < dupes[j].Fingerprint
	})
	return dupes
}

func scan(files []string, numWorkers int) ScanReport {
	report := ScanReport{ScannedAt: time.Now().Format(time.RFC3339)}
	seen := map[uint64][]string{}
	var mu sync.Mutex

	g := errgroup.Group{}
	g.SetLimit(numWorkers)
	for _, path := range files {
		path := path // per-iteration copy; required before go1.22 loop semantics
		g.Go(func() error {
			fr, prints := scanFile(path)
			mu.Lock()
			defer mu.Unlock()
			report.Files = append(report.Files, fr)
			for _, print := range prints {
				seen[print] = append(seen[print], path)
			}
			return nil
		})
	}
	err := g.Wait()
	log.Debug().Msgf("errgroup returned err %v", err)

	sort.Slice(report.Files, func(i, j int) bool {
		return report.Files[i].Path < report.Files[j].Path
	})
	report.Games = lo.SumBy(report.Files, func(fr FileReport) int { return fr.Games })
	report.Actions = lo.SumBy(report.Files, func(fr FileReport) int { return fr.Actions })
	report.Jumps = lo.SumBy(report.Files, func(fr FileReport) int { return fr.Jumps })
	report.Failures = lo.CountBy(report.Files, func(fr FileReport) bool { return fr.Error != "" })
	report.Duplicates = duplicates(seen)
	return report
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg := &config.Config{}
	args := os.Args[1:]
	err := cfg.Load(args)
	if err != nil {
		log.Fatal().Err(err).Msg("could not load config")
	}
	if cfg.GetBool("debug") {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log.Debug().Msg("Debug logging is on")
	log.Info().Msgf("Loaded config: %v", cfg.AllSettings())

	if len(cfg.Args()) == 0 {
		usage(os.Stderr)
		os.Exit(2)
	}

	files, err := collectFiles(cfg.Args())
	if err != nil {
		log.Fatal().Err(err).Msg("could not collect files")
	}
	if len(files) == 0 {
		log.Warn().Msg("nothing to scan")
		return
	}

	numWorkers := cfg.GetInt("workers")
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	log.Info().Msgf("Scanning %d files with %d workers", len(files), numWorkers)

	report := scan(files, numWorkers)

	for _, fr := range report.Files {
		if fr.Error != "" {
			log.Error().Str("file", fr.Path).Msg(fr.Error)
		}
	}
	for _, dupe := range report.Duplicates {
		log.Warn().Uint64("fingerprint", dupe.Fingerprint).Strs("paths", dupe.Paths).
			Msg("duplicate game")
	}
	log.Info().Int("games", report.Games).Int("actions", report.Actions).
		Int("jumps", report.Jumps).Int("failures", report.Failures).
		Int("duplicates", len(report.Duplicates)).Msg("scan complete")

	if out := cfg.GetString("report"); out != "" {
		data, err := yaml.Marshal(report)
		if err != nil {
			log.Fatal().Err(err).Msg("could not marshal report")
		}
		if err = os.WriteFile(out, data, 0644); err != nil {
			log.Fatal().Err(err).Msg("could not write report")
		}
		log.Info().Str("path", out).Msg("wrote report")
	}

	if report.Failures > 0 {
		os.Exit(1)
	}
	if cfg.GetBool("strict") && len(report.Duplicates) > 0 {
		os.Exit(1)
	}
}
