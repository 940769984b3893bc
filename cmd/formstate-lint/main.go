package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/goliatone/go-formstate"
	"github.com/goliatone/go-formstate/pkg/definition"
	"github.com/goliatone/go-formstate/pkg/model"
	"github.com/goliatone/go-formstate/pkg/rules"
)

type violation struct {
	file     string
	location string
	message  string
}

func main() {
	flag.Usage = func() {
		if _, err := fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [paths...]\n", filepath.Base(os.Args[0])); err != nil {
			panic(err)
		}
		if _, err := fmt.Fprintf(flag.CommandLine.Output(), "\nCheck form definition files and the defaults they declare.\n"); err != nil {
			panic(err)
		}
	}
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		paths = []string{"pkg/definition/testdata/signup.yaml"}
	}

	violations := lintPaths(context.Background(), paths)
	report(os.Stderr, violations)
	if len(violations) > 0 {
		os.Exit(1)
	}
}

func lintPaths(ctx context.Context, paths []string) []violation {
	var violations []violation
	for _, path := range paths {
		violations = append(violations, lintFile(ctx, path)...)
	}
	sort.Slice(violations, func(i, j int) bool {
		if violations[i].file == violations[j].file {
			if violations[i].location == violations[j].location {
				return violations[i].message < violations[j].message
			}
			return violations[i].location < violations[j].location
		}
		return violations[i].file < violations[j].file
	})
	return violations
}

func lintFile(ctx context.Context, path string) []violation {
	raw, err := os.ReadFile(path)
	if err != nil {
		return []violation{{file: path, location: "-", message: fmt.Sprintf("read file: %v", err)}}
	}
	forms, err := definition.Parse(raw, path)
	if err != nil {
		return []violation{{file: path, location: "-", message: err.Error()}}
	}

	var result []violation
	for _, m := range forms {
		result = append(result, lintDefaults(ctx, path, m)...)
	}
	return result
}

// lintDefaults reports declared defaults that their own rules reject. Absent
// defaults are skipped; required fields routinely start empty.
func lintDefaults(ctx context.Context, file string, m model.FormModel) []violation {
	f, err := formstate.FromModel(m)
	if err != nil {
		return []violation{{file: file, location: m.ID, message: err.Error()}}
	}
	defer f.Close()

	var result []violation
	for _, field := range m.Fields {
		if rules.Absent(field.Default) {
			continue
		}
		if f.ValidateField(ctx, field.Name) {
			continue
		}
		msg, _ := f.Error(field.Name)
		result = append(result, violation{
			file:     file,
			location: m.ID + "." + field.Name,
			message:  fmt.Sprintf("default %v: %s", field.Default, msg),
		})
	}
	return result
}

func report(w io.Writer, violations []violation) {
	for _, v := range violations {
		fmt.Fprintf(w, "%s: %s -> %s\n", v.file, v.location, v.message)
	}
}
