package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ardnew/xcomp/catalog"
	"github.com/ardnew/xcomp/lang"
	"github.com/ardnew/xcomp/log"
)

// Extract prints the translatable strings of templates as a gettext
// catalog template (.pot).
type Extract struct {
	Files []string `arg:"" help:"Template files to scan" name:"file" optional:"" type:"existingfile"`
}

// poEntry is one msgid and every place it occurs.
type poEntry struct {
	msg  lang.Message
	refs []string
}

// Run executes the extract command.
func (e *Extract) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	var entries []*poEntry

	index := make(map[[2]string]*poEntry)

	add := func(ref string, msgs []lang.Message) {
		for _, m := range msgs {
			key := [2]string{m.Singular, m.Plural}

			ent, ok := index[key]
			if !ok {
				ent = &poEntry{msg: m}
				index[key] = ent
				entries = append(entries, ent)
			}

			ent.refs = append(ent.refs, ref+":"+strconv.Itoa(m.Line))
		}
	}

	for _, src := range manifestsFrom(ctx) {
		if err := extractManifest(ctx, src, add); err != nil {
			return err
		}
	}

	for _, name := range e.Files {
		node, err := parseTemplate(ctx, name)
		if err != nil {
			return lang.WrapError(err).With(slog.String("file", name))
		}

		add(name, lang.ExtractMarkupMessages(node))
	}

	log.DebugContext(ctx, "extracted messages", slog.Int("count", len(entries)))

	return writePOT(outputFrom(ctx), entries)
}

func extractManifest(
	ctx context.Context,
	src source,
	add func(ref string, msgs []lang.Message),
) error {
	rc, err := src.open()
	if err != nil {
		return ErrLoadManifest.With(slog.String("file", src.name)).Wrap(err)
	}
	defer rc.Close()

	m, err := catalog.LoadManifest(ctx, rc)
	if err != nil {
		return ErrLoadManifest.With(slog.String("file", src.name)).Wrap(err)
	}

	c := catalog.New(catalog.WithBuiltins(false))
	if err := c.Load(ctx, m); err != nil {
		return ErrLoadManifest.With(slog.String("file", src.name)).Wrap(err)
	}

	for _, name := range c.Names() {
		t, _ := c.Get(name)
		add(src.name+"#"+name, lang.ExtractMarkupMessages(t.Root))
	}

	return nil
}

func writePOT(w io.Writer, entries []*poEntry) error {
	var sb strings.Builder

	for i, ent := range entries {
		if i > 0 {
			sb.WriteByte('\n')
		}

		fmt.Fprintf(&sb, "#: %s\n", strings.Join(ent.refs, " "))
		fmt.Fprintf(&sb, "msgid %s\n", strconv.Quote(ent.msg.Singular))

		if ent.msg.Plural == "" {
			sb.WriteString("msgstr \"\"\n")

			continue
		}

		fmt.Fprintf(&sb, "msgid_plural %s\n", strconv.Quote(ent.msg.Plural))
		sb.WriteString("msgstr[0] \"\"\nmsgstr[1] \"\"\n")
	}

	_, err := io.WriteString(w, sb.String())

	return err
}
