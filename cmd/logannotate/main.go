// Command logannotate resolves every callsign in a contest log to its
// DXCC/WAE entity and writes the annotated contacts as tab-separated
// values, ready for multiplier counting.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/kd4d/Contest-Log-Analyzer-sub002/internal/annotate"
	"github.com/kd4d/Contest-Log-Analyzer-sub002/internal/config"
	"github.com/kd4d/Contest-Log-Analyzer-sub002/internal/cty"
	"github.com/kd4d/Contest-Log-Analyzer-sub002/internal/db"
	"github.com/kd4d/Contest-Log-Analyzer-sub002/internal/logging"
	"github.com/kd4d/Contest-Log-Analyzer-sub002/internal/resolve"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("logannotate", flag.ContinueOnError)
	inputPath := fs.String("input", "-", "log file to annotate, '-' for stdin")
	column := fs.Int("column", 0, "zero-based whitespace-separated column holding the callsign")
	verbose := fs.Bool("v", false, "verbose logging")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *verbose {
		logging.SetLevel(logging.LevelDebug)
	} else {
		logging.SetLevel(logging.LevelWarn)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		return 1
	}

	ctx := context.Background()
	ctyClient, err := openCtyData(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load country-file data: %v\n", err)
		return 1
	}
	defer ctyClient.Close()

	calls, err := readCallsigns(*inputPath, *column)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read log: %v\n", err)
		return 1
	}

	resolver := resolve.New(ctyClient.DxccTable(), ctyClient.WaeTable())
	annotator := annotate.New(resolver, cfg.AnnotateWorkers)
	contacts := annotator.Annotate(calls)

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()
	fmt.Fprintln(w, "call\tentity\tprefix\tcqz\tituz\tcont\twae_entity")
	for _, contact := range contacts {
		writeContact(w, contact)
	}
	return 0
}

// openCtyData loads the prefix tables, downloading the country files when
// the local cache is missing or stale.
func openCtyData(ctx context.Context, cfg *config.Config) (*cty.Client, error) {
	dbClient, err := db.NewSQLiteClient(cfg.DataDir, cty.DBFileName)
	if err != nil {
		return nil, err
	}
	ctyClient, err := cty.NewClient(ctx, *cfg, dbClient)
	if err != nil {
		dbClient.Close()
		return nil, err
	}

	needsUpdate, err := ctyClient.NeedsUpdate(ctx)
	if err != nil {
		needsUpdate = true
	}
	if needsUpdate {
		if err := ctyClient.FetchAndStore(ctx); err != nil {
			if loadErr := ctyClient.LoadFromDB(ctx); loadErr != nil || ctyClient.DxccTable().Len() == 0 {
				ctyClient.Close()
				return nil, err
			}
			logging.Warn("Download failed, using cached country-file data: %v", err)
		}
	} else if err := ctyClient.LoadFromDB(ctx); err != nil {
		ctyClient.Close()
		return nil, err
	}
	return ctyClient, nil
}

// readCallsigns extracts one callsign per non-comment line. The column
// flag selects the whitespace-separated field, so both bare callsign lists
// and delimited log exports work.
func readCallsigns(path string, column int) ([]string, error) {
	var in *os.File
	if path == "-" {
		in = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		in = f
	}

	var calls []string
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if column >= len(fields) {
			continue
		}
		calls = append(calls, fields[column])
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return calls, nil
}

func writeContact(w *bufio.Writer, contact annotate.Contact) {
	info := contact.Info
	name := info.Name
	if info.IsUnknown() {
		name = "-"
	}
	wae := info.WAEName
	if wae == "" {
		wae = "-"
	}
	fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
		contact.Callsign, name, orDash(info.Prefix), info.CQZone, info.ITUZone,
		orDash(info.Continent), wae)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
