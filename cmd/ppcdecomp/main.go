package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/mvanbem/decompiler/pkg/batch"
	"github.com/mvanbem/decompiler/pkg/block"
	"github.com/mvanbem/decompiler/pkg/discover"
	"github.com/mvanbem/decompiler/pkg/dol"
	"github.com/mvanbem/decompiler/pkg/fact"
	"github.com/mvanbem/decompiler/pkg/gcdisc"
	"github.com/mvanbem/decompiler/pkg/locale"
	"github.com/mvanbem/decompiler/pkg/pipeline"
	"github.com/mvanbem/decompiler/pkg/render"
	"github.com/mvanbem/decompiler/pkg/symexec"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ppcdecomp",
		Short: "PowerPC static analysis core — discover, block, and symbolically execute GameCube code",
	}

	var format string
	var outDir string

	analyzeCmd := &cobra.Command{
		Use:   "analyze <image> <entry-hex>",
		Short: "Analyze a single entry point and write a listing and a CFG",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, err := openImage(args[0], format)
			if err != nil {
				return fmt.Errorf("opening image: %w", err)
			}
			entry, err := parseEntry(args[1])
			if err != nil {
				return fmt.Errorf("parsing entry point: %w", err)
			}

			db := fact.NewDatabase()
			discover.Run(db, reader, entry)
			fmt.Printf("Discovery: %s block ends and branch targets, %s subroutines\n",
				locale.Count(len(db.IterAddressesOfKind(fact.KindBasicBlockEnd))+len(db.IterAddressesOfKind(fact.KindBranchTarget))),
				locale.Count(len(db.IterAddressesOfKind(fact.KindSubroutine))))

			block.Build(db, entry)
			fmt.Printf("Blocks: %s basic blocks\n", locale.Count(len(db.IterAddressesOfKind(fact.KindBasicBlock))))

			ctx := symexec.NewContext()
			numbered := &symexec.NumberedAllocator{}
			result := pipeline.Run(db, reader, ctx, numbered, entry)
			fmt.Printf("Pipeline: %s resolved return value(s)\n", locale.Count(len(result.ReturnValues)))

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}
			if err := writeListingAndDot(db, reader, outDir, entry); err != nil {
				return err
			}
			fmt.Printf("Written to %s\n", outDir)
			return nil
		},
	}
	analyzeCmd.Flags().StringVar(&format, "format", "auto", "Image format: auto, dol, or gcdisc")
	analyzeCmd.Flags().StringVar(&outDir, "out", ".", "Output directory for the listing and CFG files")

	var numWorkers int
	var interval time.Duration

	batchCmd := &cobra.Command{
		Use:   "batch <image> <entries-file>",
		Short: "Analyze every entry point listed in entries-file concurrently",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, err := openImage(args[0], format)
			if err != nil {
				return fmt.Errorf("opening image: %w", err)
			}
			entries, err := readEntries(args[1])
			if err != nil {
				return fmt.Errorf("reading entries file: %w", err)
			}
			if numWorkers <= 0 {
				numWorkers = runtime.NumCPU()
			}

			fmt.Printf("Analyzing %s entry points with %d workers\n", locale.Count(len(entries)), numWorkers)
			results := batch.Run(entries, reader, numWorkers, interval, func(p batch.Progress) {
				fmt.Printf("  progress: %s / %s\n", locale.Count(int(p.Completed)), locale.Count(int(p.Total)))
			})

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}

			var failed int
			for _, a := range results {
				if a.Err != nil {
					fmt.Fprintf(os.Stderr, "  %s: %v\n", a.Entry, a.Err)
					failed++
					continue
				}
				if err := writeListingAndDot(a.DB, reader, outDir, a.Entry); err != nil {
					return fmt.Errorf("writing output for %s: %w", a.Entry, err)
				}
			}

			fmt.Printf("Done: %s succeeded, %s failed\n",
				locale.Count(len(results)-failed), locale.Count(failed))
			if failed > 0 {
				return fmt.Errorf("%d entries failed", failed)
			}
			return nil
		},
	}
	batchCmd.Flags().StringVar(&format, "format", "auto", "Image format: auto, dol, or gcdisc")
	batchCmd.Flags().StringVar(&outDir, "out", ".", "Output directory for the listing and CFG files")
	batchCmd.Flags().IntVar(&numWorkers, "workers", 0, "Number of workers (0 = NumCPU)")
	batchCmd.Flags().DurationVar(&interval, "report-interval", time.Second, "Progress report interval")

	rootCmd.AddCommand(analyzeCmd, batchCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openImage reads path and returns a discover.WordReader over it,
// choosing between a flat DOL and a full disc image by format, or by
// file size when format is "auto".
func openImage(path string, format string) (discover.WordReader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if format == "auto" {
		if len(data) == gcdisc.Size {
			format = "gcdisc"
		} else {
			format = "dol"
		}
	}

	switch format {
	case "dol":
		return dol.NewReader(data), nil
	case "gcdisc":
		return gcdisc.NewReader(data).MainExecutable(), nil
	default:
		return nil, fmt.Errorf("unknown --format value %q: use auto, dol, or gcdisc", format)
	}
}

func parseEntry(s string) (fact.Address, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid entry address %q: %w", s, err)
	}
	return fact.Address(v), nil
}

// readEntries parses one hex address per line, skipping blank lines and
// lines starting with '#'.
func readEntries(path string) ([]fact.Address, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []fact.Address
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entry, err := parseEntry(line)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func writeListingAndDot(db *fact.Database, reader discover.WordReader, outDir string, entry fact.Address) error {
	listingPath := filepath.Join(outDir, fmt.Sprintf("%s.listing.txt", entry))
	lf, err := os.Create(listingPath)
	if err != nil {
		return err
	}
	defer lf.Close()
	if err := render.WriteListing(lf, db, reader); err != nil {
		return fmt.Errorf("writing listing: %w", err)
	}
	if err := render.WriteErrorsSection(lf, db); err != nil {
		return fmt.Errorf("writing errors section: %w", err)
	}

	dotPath := filepath.Join(outDir, fmt.Sprintf("%s.dot", entry))
	df, err := os.Create(dotPath)
	if err != nil {
		return err
	}
	defer df.Close()
	if err := render.WriteDot(df, db, reader); err != nil {
		return fmt.Errorf("writing CFG: %w", err)
	}
	return nil
}
