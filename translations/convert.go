package translations

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultLanguage is assumed for catalog files whose name carries no
// locale suffix.
const DefaultLanguage = "en-US"

// filenameLocaleRe matches the name_<locale> convention, e.g.
// "text_dict_default_pt-BR", "monai_es-419" or "tutorial_fr".
var filenameLocaleRe = regexp.MustCompile(`^(.+)_([a-z]{2,3}(?:-(?:[A-Z]{2}|\d{3}))?)$`)

// ParseFileLanguage splits a catalog or TS filename into its base name and
// locale. Files without a locale suffix report DefaultLanguage.
func ParseFileLanguage(path string) (base, language string) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if m := filenameLocaleRe.FindStringSubmatch(name); m != nil {
		return m[1], m[2]
	}
	return name, DefaultLanguage
}

// JSONToTS converts a JSON catalog into a TS file for one language.
// Finished translations in an existing file at outputPath are preserved
// when their source text is unchanged.
func JSONToTS(inputPath, outputPath, language, contextName string) error {
	f, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("opening catalog: %w", err)
	}
	entries, err := FlattenCatalog(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("flattening catalog %s: %w", inputPath, err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("catalog %s contains no translatable strings", inputPath)
	}

	existing, err := LoadDocument(outputPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading existing translations: %w", err)
	}

	doc := BuildDocument(language, contextName, filepath.Base(inputPath), entries, existing)
	return doc.WriteFile(outputPath)
}

// TSToJSON converts a TS file back into the nested JSON catalog, taking
// finished translations and falling back to source text for the rest.
func TSToJSON(inputPath, outputPath string) error {
	doc, err := LoadDocument(inputPath)
	if err != nil {
		return err
	}
	entries, err := doc.Entries()
	if err != nil {
		return fmt.Errorf("converting %s: %w", inputPath, err)
	}
	data, err := RebuildCatalog(entries)
	if err != nil {
		return fmt.Errorf("rebuilding catalog from %s: %w", inputPath, err)
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("writing catalog: %w", err)
	}
	return nil
}

// BatchJSONToTS generates one TS file per language next to the input
// catalog, named <name>_<language>.ts. It returns the written paths.
func BatchJSONToTS(inputPath, name string, languages []string, contextName string) ([]string, error) {
	dir := filepath.Dir(inputPath)
	written := make([]string, 0, len(languages))
	for _, language := range languages {
		outputPath := filepath.Join(dir, fmt.Sprintf("%s_%s.ts", name, language))
		if err := JSONToTS(inputPath, outputPath, language, contextName); err != nil {
			return written, fmt.Errorf("generating %s: %w", outputPath, err)
		}
		written = append(written, outputPath)
	}
	return written, nil
}
