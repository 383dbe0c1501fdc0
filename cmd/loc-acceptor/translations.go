package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/sliceworks/loc-acceptor/translations"
)

// TranslationsCommand defines the "translations" subcommand for converting
// tutorial text catalogs between JSON and Qt TS.
func TranslationsCommand() *cli.Command {
	return &cli.Command{
		Name:      "translations",
		Usage:     "Convert tutorial translation catalogs between JSON and Qt TS",
		ArgsUsage: "<input-file>",
		Description: `Converts a nested JSON text catalog to a Qt TS translation file or back.

Catalog entries are keyed by their JSON path, so a TS file converted back to
JSON reproduces the catalog layout. Finished translations in an existing TS
file are preserved as long as their source text is unchanged.

Examples:
  loc-acceptor translations --mode json2ts text_dict_default.json
  loc-acceptor translations --mode json2ts text_dict_default.json --languages pt-BR,es-419,fr-FR --name monai
  loc-acceptor translations --mode ts2json monai_pt-BR.ts`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "mode",
				Usage:    "conversion mode: json2ts or ts2json",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "output",
				Usage: "output file; derived from the input filename when omitted",
			},
			&cli.StringFlag{
				Name:  "context",
				Usage: "translation context name",
				Value: translations.DefaultContext,
			},
			&cli.StringSliceFlag{
				Name:  "languages",
				Usage: "generate one TS file per language (requires --name)",
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "base name for per-language TS files (requires --languages)",
			},
		},
		Action: runTranslations,
	}
}

func runTranslations(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("expected exactly one input file, got %d arguments", ctx.NArg())
	}
	input := ctx.Args().First()
	mode := ctx.String("mode")
	languages := ctx.StringSlice("languages")
	name := ctx.String("name")

	if (len(languages) > 0) != (name != "") {
		return fmt.Errorf("--languages and --name must be used together")
	}
	if len(languages) > 0 && mode != "json2ts" {
		return fmt.Errorf("--languages is only valid with --mode json2ts")
	}

	base, language := translations.ParseFileLanguage(input)
	inputDir := filepath.Dir(input)

	switch mode {
	case "json2ts":
		if len(languages) > 0 {
			written, err := translations.BatchJSONToTS(input, name, languages, ctx.String("context"))
			if err != nil {
				return err
			}
			fmt.Fprintf(ctx.App.Writer, "Generated %d TS files: %s\n", len(written), strings.Join(written, ", "))
			return nil
		}
		output := ctx.String("output")
		if output == "" {
			output = filepath.Join(inputDir, fmt.Sprintf("%s_%s.ts", base, language))
		}
		if err := translations.JSONToTS(input, output, language, ctx.String("context")); err != nil {
			return err
		}
		fmt.Fprintf(ctx.App.Writer, "TS file generated: %s\n", output)
		return nil

	case "ts2json":
		output := ctx.String("output")
		if output == "" {
			output = filepath.Join(inputDir, fmt.Sprintf("%s_%s_translated.json", language, base))
		}
		if err := translations.TSToJSON(input, output); err != nil {
			return err
		}
		fmt.Fprintf(ctx.App.Writer, "JSON catalog reconstructed: %s\n", output)
		return nil

	default:
		return fmt.Errorf("unknown mode %q (want json2ts or ts2json)", mode)
	}
}
