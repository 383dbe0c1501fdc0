package translations

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultContext is the Qt translation context the tutorial catalogs use.
const DefaultContext = "TutorialMaker"

// tsVersion pins the TS document format the pipeline's linguist tooling
// understands.
const tsVersion = "2.1"

// Document is a Qt TS translation file. Each catalog entry becomes one
// message whose extracomment carries the entry's JSON path, so the reverse
// conversion can rebuild the catalog without guessing.
type Document struct {
	XMLName  xml.Name  `xml:"TS"`
	Version  string    `xml:"version,attr"`
	Language string    `xml:"language,attr"`
	Contexts []Context `xml:"context"`
}

// Context groups messages under one translation context name.
type Context struct {
	Name     string    `xml:"name"`
	Messages []Message `xml:"message"`
}

// Message is a single translatable string.
type Message struct {
	Location     *Location   `xml:"location,omitempty"`
	Source       string      `xml:"source"`
	ExtraComment string      `xml:"extracomment,omitempty"`
	Translation  Translation `xml:"translation"`
}

// Location records where the string came from; for catalog-derived
// messages the filename is the catalog file and the line its entry number.
type Location struct {
	Filename string `xml:"filename,attr"`
	Line     int    `xml:"line,attr"`
}

// Translation holds the translated text. An absent or "unfinished" type
// marks entries still waiting for a translator.
type Translation struct {
	Type string `xml:"type,attr,omitempty"`
	Text string `xml:",chardata"`
}

// Finished reports whether the translation has been completed.
func (t Translation) Finished() bool {
	return t.Type != "unfinished"
}

// BuildDocument renders catalog entries as a TS document for one language.
// Messages already finished in existing keep their translation, provided
// the source text has not changed underneath them; everything else starts
// unfinished. The language tag is stored with underscores, Qt style.
func BuildDocument(language, contextName, sourceName string, entries []Entry, existing *Document) *Document {
	preserved := make(map[string]Message)
	if existing != nil {
		for _, ctx := range existing.Contexts {
			for _, msg := range ctx.Messages {
				if msg.ExtraComment != "" && msg.Translation.Finished() && msg.Translation.Text != "" {
					preserved[msg.ExtraComment] = msg
				}
			}
		}
	}

	messages := make([]Message, 0, len(entries))
	for i, e := range entries {
		msg := Message{
			Location:     &Location{Filename: sourceName, Line: i + 1},
			Source:       e.Text,
			ExtraComment: e.Path,
			Translation:  Translation{Type: "unfinished"},
		}
		if prev, ok := preserved[e.Path]; ok && prev.Source == e.Text {
			msg.Translation = Translation{Type: "finished", Text: prev.Translation.Text}
		}
		messages = append(messages, msg)
	}

	return &Document{
		Version:  tsVersion,
		Language: strings.ReplaceAll(language, "-", "_"),
		Contexts: []Context{{Name: contextName, Messages: messages}},
	}
}

// Entries converts the document back to catalog entries in message order.
// Finished translations win; unfinished ones fall back to the source text
// so the rebuilt catalog is always complete.
func (d *Document) Entries() ([]Entry, error) {
	var entries []Entry
	for _, ctx := range d.Contexts {
		for _, msg := range ctx.Messages {
			if msg.ExtraComment == "" {
				continue
			}
			text := msg.Source
			if msg.Translation.Finished() && msg.Translation.Text != "" {
				text = msg.Translation.Text
			}
			entries = append(entries, Entry{Path: msg.ExtraComment, Text: text})
		}
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("TS document carries no catalog-keyed messages")
	}
	return entries, nil
}

// LoadDocument parses a TS file. A missing file surfaces os.ErrNotExist
// through the wrapped error so callers can treat it as "nothing to
// preserve".
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading TS file: %w", err)
	}
	var doc Document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing TS file %s: %w", path, err)
	}
	return &doc, nil
}

// Write renders the document with the XML prolog and DOCTYPE the Qt
// tooling expects.
func (d *Document) Write(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header+"<!DOCTYPE TS>\n"); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "    ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encoding TS document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// WriteFile persists the document to path.
func (d *Document) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating TS file: %w", err)
	}
	werr := d.Write(f)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	return werr
}
