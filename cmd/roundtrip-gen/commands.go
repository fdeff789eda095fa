package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"roundtrip-generator/internal/analyze"
	"roundtrip-generator/internal/config"
	"roundtrip-generator/internal/gen"
	"roundtrip-generator/internal/plan"
	"roundtrip-generator/primitive"
)

var errDiagnostics = errors.New("derivation failed")

// selection is the manifest assembled from the config file and flags, with
// the directory its package pattern is relative to.
type selection struct {
	manifest *config.Manifest
	dir      string
}

func (a *app) selection() (*selection, error) {
	sel := &selection{manifest: &config.Manifest{}}

	if path := a.v.GetString(flagConfig); path != "" {
		m, err := config.LoadFile(path)
		if err != nil {
			return nil, err
		}

		sel.manifest = m
		sel.dir = filepath.Dir(path)
	}

	m := sel.manifest
	if pkg := a.v.GetString(flagPkg); pkg != "" {
		m.Package = pkg
		sel.dir = ""
	}

	if prefix := a.v.GetString(flagPrefix); prefix != "" {
		m.Prefix = prefix
	}

	for _, t := range a.v.GetStringSlice(flagTypes) {
		source, target, _ := strings.Cut(t, ":")
		m.Types = append(m.Types, config.TypeEntry{Name: source, Target: target})
	}

	m.Aliases = append(m.Aliases, a.v.GetStringSlice(flagAliases)...)

	data, err := config.Marshal(m)
	if err != nil {
		return nil, err
	}

	// Re-parse to apply defaults and validation to flag input.
	if sel.manifest, err = config.Parse(data); err != nil {
		return nil, err
	}

	return sel, nil
}

// load loads the selected package.
func (a *app) load(sel *selection) (*analyze.Analyzer, *analyze.PackageInfo, error) {
	analyzer := analyze.NewAnalyzer(sel.dir)

	graph, err := analyzer.LoadPackages(sel.manifest.Package)
	if err != nil {
		return nil, nil, err
	}

	if len(graph.Packages) != 1 {
		return nil, nil, fmt.Errorf("pattern %q matched %d packages, want 1", sel.manifest.Package, len(graph.Packages))
	}

	pkg := lo.Values(graph.Packages)[0]
	a.logger.Debug("loaded package",
		zap.String("path", pkg.Path),
		zap.String("dir", pkg.Dir),
		zap.Int("types", len(pkg.Types)))

	return analyzer, pkg, nil
}

// resolve plans the selected types and prints the diagnostics.
func (a *app) resolve(cmd *cobra.Command, sel *selection) (*plan.Result, error) {
	analyzer, pkg, err := a.load(sel)
	if err != nil {
		return nil, err
	}

	m := sel.manifest
	req := plan.Request{
		Package: pkg.Path,
		Prefix:  m.Prefix,
		Aliases: m.Aliases,
		Types: lo.Map(m.Types, func(t config.TypeEntry, _ int) plan.Requested {
			return plan.Requested{Source: t.Name, Target: t.Target, Func: t.Func}
		}),
	}

	res := plan.NewResolver(analyzer, plan.WithLogger(a.logger)).Resolve(req)

	out := cmd.OutOrStdout()
	for _, d := range res.Diagnostics.All() {
		fmt.Fprintf(out, "%s: %s\n", d.Severity, d)
	}

	if res.Diagnostics.HasErrors() {
		return res, fmt.Errorf("%w: %d errors", errDiagnostics, len(res.Diagnostics.Errors))
	}

	return res, nil
}

func (a *app) analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Print the shapes of the exported types of a package",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.v.GetBool(flagLeaves) {
				for _, pair := range primitive.Pairs() {
					fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", pair.From, pair.To)
				}

				return nil
			}

			pkg := a.v.GetString(flagPkg)
			if pkg == "" {
				return errors.New("--pkg is required")
			}

			analyzer, info, err := a.load(&selection{manifest: &config.Manifest{Package: pkg}})
			if err != nil {
				return err
			}

			names := a.v.GetStringSlice(flagTypes)
			out := cmd.OutOrStdout()

			for _, id := range info.Types {
				if len(names) > 0 && !lo.Contains(names, id.Name) {
					continue
				}

				t := analyzer.Graph().GetType(id)
				if !t.Kind.Derivable() {
					fmt.Fprintf(out, "%s: %s\n\n", id.Name, t.Kind)
					continue
				}

				inst, err := analyzer.Instantiate(t, "S")
				if err != nil {
					fmt.Fprintf(out, "%s: %v\n\n", id.Name, err)
					continue
				}

				fmt.Fprintln(out, inst.Shape.Outline())
			}

			return nil
		},
	}

	cmd.Flags().String(flagPkg, "", "package pattern holding the types")
	cmd.Flags().StringSlice(flagTypes, nil, "restrict output to these type names")
	cmd.Flags().Bool(flagLeaves, false, "print the compatible primitive kind pairs instead")

	return cmd
}

func (a *app) checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Compose the requested types and report diagnostics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sel, err := a.selection()
			if err != nil {
				return err
			}

			_, err = a.resolve(cmd, sel)
			return err
		},
	}

	addSelectionFlags(cmd)

	return cmd
}

func (a *app) genCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate round-trip functions into the package directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sel, err := a.selection()
			if err != nil {
				return err
			}

			res, err := a.resolve(cmd, sel)
			if err != nil {
				return err
			}

			dir, filename := res.Package.Dir, sel.manifest.Output
			if out := a.v.GetString(flagOut); out != "" {
				dir, filename = filepath.Dir(out), filepath.Base(out)
			}

			generator := gen.NewGenerator(gen.GeneratorConfig{
				Filename:  filename,
				OutputDir: dir,
			}, gen.WithLogger(a.logger))

			file, err := generator.Generate(res)
			if err != nil {
				return err
			}

			if err := gen.WriteFiles([]gen.GeneratedFile{*file}, dir); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d functions)\n",
				filepath.Join(dir, filename), len(res.Derivations))

			return nil
		},
	}

	addSelectionFlags(cmd)
	cmd.Flags().String(flagOut, "", "output file (default: <package dir>/<manifest output>)")

	return cmd
}
