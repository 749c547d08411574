package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-brawler/internal/framedata"
	"github.com/vovakirdan/tui-brawler/internal/roster"
	"github.com/vovakirdan/tui-brawler/internal/stage"
)

var flagValidateKind string

var validateCmd = &cobra.Command{
	Use:   "validate [paths...]",
	Short: "Check character and stage data files",
	Long: `Load the given character or stage YAML/JSON files and report every
validation problem. Directories are walked for .yaml, .yml and .json files.
With no arguments the --data directory (plus the embedded defaults) is
checked instead.

A file's kind is detected by trying the character loader first and the
stage loader second; use --kind to force one.

Exits non-zero if any file fails.

Examples:
  brawler validate
  brawler validate my-fighter.yaml
  brawler validate ./data/characters --kind character`,
	Run: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&flagValidateKind, "kind", "auto", "File kind: character, stage or auto")
}

func runValidate(cmd *cobra.Command, args []string) {
	if len(args) == 0 {
		validateDataDir()
		return
	}

	var files []string
	for _, arg := range args {
		expanded, err := collectDataFiles(arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		files = append(files, expanded...)
	}
	if len(files) == 0 {
		fmt.Println("No data files found.")
		return
	}

	failed := 0
	for _, path := range files {
		if err := validateFile(path); err != nil {
			failed++
			fmt.Printf("FAIL  %s\n", path)
			fmt.Printf("      %v\n", err)
		} else {
			fmt.Printf("ok    %s\n", path)
		}
	}

	fmt.Println()
	fmt.Printf("%d file(s) checked, %d failed.\n", len(files), failed)
	if failed > 0 {
		os.Exit(1)
	}
}

// validateDataDir loads everything the game itself would load at startup.
func validateDataDir() {
	r, err := roster.Load(flagDataDir)
	if err != nil {
		fmt.Printf("FAIL  %v\n", err)

		var loadErr *framedata.LoadError
		if errors.As(err, &loadErr) && loadErr.Character != "" {
			fmt.Printf("      offending character: %s\n", loadErr.Character)
		}
		os.Exit(1)
	}

	fmt.Printf("ok    %d character(s): %v\n", len(r.Characters()), r.Characters())
	fmt.Printf("ok    %d stage(s): %v\n", len(r.StageNames()), r.StageNames())
}

// collectDataFiles expands a path into the data files beneath it.
func collectDataFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		switch filepath.Ext(p) {
		case ".yaml", ".yml", ".json":
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// validateFile checks one file against the loader(s) selected by --kind.
func validateFile(path string) error {
	switch flagValidateKind {
	case "character":
		_, err := framedata.LoadCharacterFile(path)
		return err
	case "stage":
		_, err := stage.LoadFile(path)
		return err
	default:
		_, charErr := framedata.LoadCharacterFile(path)
		if charErr == nil {
			return nil
		}
		_, stageErr := stage.LoadFile(path)
		if stageErr == nil {
			return nil
		}
		return fmt.Errorf("not a valid character (%v) nor stage (%v)", charErr, stageErr)
	}
}
