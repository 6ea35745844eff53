package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/yaml.v3"

	"github.com/vsariola/humgrid/gomidi"
	"github.com/vsariola/humgrid/humdrum"
	"github.com/vsariola/humgrid/report"
	"github.com/vsariola/humgrid/score"
	"github.com/vsariola/humgrid/version"
)

func main() {
	safe := flag.Bool("n", false, "Never overwrite files; if file already exists and would be overwritten, give an error.")
	list := flag.Bool("l", false, "Do not write files; just list files that would change instead.")
	stdout := flag.Bool("s", false, "Do not write files; write to standard output instead.")
	help := flag.Bool("h", false, "Show help.")
	outPath := flag.String("o", "", "Directory or filename where to write the output. Extension is ignored. Directory and its parents are created if needed. By default, everything is placed in the same directory where the original score file is.")
	recip := flag.Bool("r", false, "Add a **recip spine with the duration of each line.")
	removeClefs := flag.Bool("c", false, "Remove clef changes to the clef already in effect.")
	moveClefs := flag.Bool("k", false, "Move clef changes that open a measure before the barline of the measure.")
	explicitBars := flag.Bool("x", false, "Number barlines with the measure numbers of the score instead of counting measures.")
	tolerateGaps := flag.Bool("g", false, "Warn about gaps in the first track that cannot be filled with invisible rests instead of failing.")
	interp := flag.String("i", "**kern", "Exclusive interpretation of the staff spines.")
	diff := flag.Bool("d", false, "Do not write files; print a unified diff against the existing output instead.")
	midiOut := flag.Bool("m", false, "Also write the score as a .mid file.")
	yamlOut := flag.Bool("y", false, "Also write the score in canonical form as a .yml file.")
	dump := flag.Bool("dump", false, "Print a dump of the reconciled grid to standard error.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if flag.NArg() == 0 || *help {
		flag.Usage()
		os.Exit(0)
	}
	var reporter *report.Reporter
	if *dump {
		var err error
		if reporter, err = report.New(); err != nil {
			fmt.Fprintf(os.Stderr, "error creating reporter: %v\n", err)
			os.Exit(1)
		}
	}
	output := func(filename string, extension string, contents []byte) error {
		if *stdout {
			fmt.Print(string(contents))
			return nil
		}
		dir, name := filepath.Split(filename)
		if *outPath != "" {
			// check if it's an already existing directory and the user just forgot trailing slash
			if info, err := os.Stat(*outPath); err == nil && info.IsDir() {
				dir = *outPath
			} else {
				outdir, outname := filepath.Split(*outPath)
				if outdir != "" {
					dir = outdir
				}
				if outname != "" {
					name = outname
				}
			}
		}
		if dir == "" {
			var err error
			dir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("could not get working directory, specify the output directory explicitly: %v", err)
			}
		}
		name = strings.TrimSuffix(name, filepath.Ext(name)) + extension
		f := filepath.Join(dir, name)
		original, err := os.ReadFile(f)
		if err == nil {
			if bytes.Equal(original, contents) {
				return nil // no need to update
			}
			if !*list && !*diff && *safe {
				return fmt.Errorf("file %v would be overwritten", f)
			}
		}
		switch {
		case *diff:
			text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
				A:        difflib.SplitLines(string(original)),
				B:        difflib.SplitLines(string(contents)),
				FromFile: f,
				ToFile:   f + " (new)",
				Context:  3,
			})
			if err != nil {
				return fmt.Errorf("could not diff %v: %v", f, err)
			}
			fmt.Print(text)
		case *list:
			fmt.Println(f)
		default:
			if err := os.MkdirAll(dir, os.ModePerm); err != nil {
				return fmt.Errorf("could not create output directory %v: %v", dir, err)
			}
			if err := os.WriteFile(f, contents, 0644); err != nil {
				return fmt.Errorf("could not write file %v: %v", f, err)
			}
		}
		return nil
	}
	process := func(filename string) error {
		inputBytes, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("could not read file %v: %v", filename, err)
		}
		sc, err := score.Unmarshal(inputBytes)
		if err != nil {
			return err
		}
		g, err := score.Build(sc)
		if err != nil {
			return fmt.Errorf("building the grid failed: %v", err)
		}
		g.Recip = *recip
		g.Interpretation = *interp
		g.ExplicitBarNumbers = *explicitBars
		g.MoveLeadingClefs = *moveClefs
		g.RemoveRedundantClefs = *removeClefs
		g.TolerateGaps = *tolerateGaps
		var out humdrum.File
		transferErr := g.Transfer(&out)
		for _, d := range g.Diagnostics {
			log.Printf("%v: %v", filename, d)
		}
		if reporter != nil {
			text, err := reporter.Dump(g)
			if err != nil {
				return err
			}
			fmt.Fprint(os.Stderr, text)
		}
		if transferErr != nil {
			return fmt.Errorf("converting to humdrum failed: %v", transferErr)
		}
		if err := output(filename, ".krn", []byte(out.String())); err != nil {
			return fmt.Errorf("error outputting krn file: %v", err)
		}
		if *midiOut {
			var buf bytes.Buffer
			if err := gomidi.WriteScore(&buf, sc); err != nil {
				return fmt.Errorf("could not write the score as midi: %v", err)
			}
			if err := output(filename, ".mid", buf.Bytes()); err != nil {
				return fmt.Errorf("error outputting midi file: %v", err)
			}
		}
		if *yamlOut {
			yamlScore, err := yaml.Marshal(sc)
			if err != nil {
				return fmt.Errorf("could not marshal the score as yaml file: %v", err)
			}
			if err := output(filename, ".yml", yamlScore); err != nil {
				return fmt.Errorf("error outputting yaml file: %v", err)
			}
		}
		return nil
	}
	retval := 0
	for _, param := range flag.Args() {
		if info, err := os.Stat(param); err == nil && info.IsDir() {
			jsonfiles, err := filepath.Glob(filepath.Join(param, "*.json"))
			if err != nil {
				fmt.Fprintf(os.Stderr, "could not glob the path %v for json files: %v\n", param, err)
				retval = 1
				continue
			}
			ymlfiles, err := filepath.Glob(filepath.Join(param, "*.yml"))
			if err != nil {
				fmt.Fprintf(os.Stderr, "could not glob the path %v for yml files: %v\n", param, err)
				retval = 1
				continue
			}
			files := append(ymlfiles, jsonfiles...)
			for _, file := range files {
				err := process(file)
				if err != nil {
					fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", file, err)
					retval = 1
				}
			}
		} else {
			err := process(param)
			if err != nil {
				fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", param, err)
				retval = 1
			}
		}
	}
	os.Exit(retval)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "humgrid converts .yml or .json scores to Humdrum **kern (.krn) files.\nUsage: %s [flags] [path ...]\n", os.Args[0])
	flag.PrintDefaults()
}
