package repl

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/xcomp/catalog"
	"github.com/ardnew/xcomp/log"
)

const defaultEditor = "vi"

// editManifestCommand implements [tea.ExecCommand] for the manifest
// edit-load-retry loop. It writes the catalog's templates and globals to a
// temporary YAML manifest, opens the user's editor, and loads the result
// back into the catalog. On error the user is prompted to re-edit; declining
// exits the program.
type editManifestCommand struct {
	catalog *catalog.Catalog
	ctxFunc func() context.Context
	loaded  bool
	logger  log.Logger
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editManifestCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editManifestCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editManifestCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit-load-retry loop. If the user declines to re-edit
// after an error, it returns [ErrEditDeclined].
func (c *editManifestCommand) Run() error {
	ctx := c.ctxFunc()

	content, err := yaml.MarshalContext(ctx, c.catalog.Manifest(), yaml.Indent(2), yaml.UseLiteralStyleIfMultiline(true))
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	f, err := os.CreateTemp(os.TempDir(), "xcomp-repl-*.yaml")
	if err != nil {
		return err
	}

	tmpPath := f.Name()

	defer os.Remove(tmpPath)

	if err := f.Chmod(0o600); err != nil {
		f.Close()

		return err
	}

	f.Close()

	for {
		if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
			return err
		}

		if err := runEditor(ctx, c.stdin, c.stdout, c.stderr, tmpPath); err != nil {
			return err
		}

		content, err = os.ReadFile(tmpPath)
		if err != nil {
			return err
		}

		// An emptied file cancels the edit.
		if len(bytes.TrimSpace(content)) == 0 {
			return nil
		}

		loadErr := c.load(ctx, content)
		c.logger.TraceContext(
			ctx,
			"editor load attempt",
			slog.Int("content_length", len(content)),
			slog.Bool("success", loadErr == nil),
		)

		if loadErr == nil {
			c.loaded = true

			return nil
		}

		fmt.Fprintf(c.stderr, "\nManifest error: %s\n", loadErr)
		fmt.Fprintf(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		response := strings.TrimSpace(strings.ToLower(scanner.Text()))
		if response == "n" || response == "no" {
			return ErrEditDeclined
		}
	}
}

func (c *editManifestCommand) load(ctx context.Context, content []byte) error {
	m, err := catalog.LoadManifest(ctx, bytes.NewReader(content))
	if err != nil {
		return err
	}

	return c.catalog.Load(ctx, m)
}

// runEditor launches the user's editor on the given file path.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	cmd := exec.CommandContext(ctx, editor, path)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}
