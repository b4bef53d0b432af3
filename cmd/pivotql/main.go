// Command pivotql runs a single pivot query against a local CSV file
// and writes the JSON result to stdout.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/k0kubun/pp/v3"

	"github.com/pivotql/pivotql/internal/csvsource"
	"github.com/pivotql/pivotql/internal/dispatch"
	"github.com/pivotql/pivotql/internal/perr"
	"github.com/pivotql/pivotql/internal/serialize"
	"github.com/pivotql/pivotql/util"
)

var version string

type options struct {
	File          string `short:"f" long:"file" description:"CSV file to load" value-name:"csv_file" required:"true"`
	Query         string `short:"q" long:"query" description:"URL-encoded pivot query string" value-name:"query" required:"true"`
	Preview       bool   `long:"preview" description:"Truncate results to a 10-row preview"`
	CorrectedMean bool   `long:"corrected-mean" description:"Use the arithmetic running mean for expandby instead of reproducing the source's quirk"`
	Debug         bool   `long:"debug" description:"Pretty-print the parsed query AST to stderr before running it"`
	Help          bool   `long:"help" description:"Show this help"`
	Version       bool   `long:"version" description:"Show this version"`
}

func main() {
	util.InitSlog()

	var opts options
	parser := flags.NewParser(&opts, flags.None)
	parser.Usage = "[options]"
	_, err := parser.ParseArgs(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	if opts.Help {
		parser.WriteHelp(os.Stdout)
		os.Exit(0)
	}
	if opts.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	f, err := os.Open(opts.File)
	if err != nil {
		log.Fatalf("Failed to open '%s': %s", opts.File, err)
	}
	defer f.Close()

	table, err := csvsource.Load(opts.File, f)
	if err != nil {
		exitWithQueryError(err)
	}

	var flagsList []string
	if opts.Preview {
		flagsList = append(flagsList, "preview")
	}
	if opts.CorrectedMean {
		flagsList = append(flagsList, "corrected-mean")
	}

	req := dispatch.Request{QueryString: opts.Query, Flags: flagsList}

	if opts.Debug {
		parsed, err := dispatch.Debug(req)
		if err != nil {
			exitWithQueryError(err)
		}
		pp.Fprintln(os.Stderr, parsed)
	}

	result, err := dispatch.RunInMemory(table, req)
	if err != nil {
		exitWithQueryError(err)
	}

	out, err := serialize.ToJSON(result)
	if err != nil {
		log.Fatal(err)
	}
	os.Stdout.Write(out)
	os.Stdout.WriteString("\n")
}

// exitWithQueryError reports a perr.Error's Kind alongside its message
// before exiting, so a shell caller can distinguish a bad query from a
// bad data file without parsing free text.
func exitWithQueryError(err error) {
	if e, ok := perr.As(err); ok {
		fmt.Fprintf(os.Stderr, "%s: %s\n", e.Kind, e.Message)
		os.Exit(1)
	}
	log.Fatal(err)
}
