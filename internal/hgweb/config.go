package hgweb

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
)

var configTmpl = template.Must(template.New("hgweb.config").Parse(`
[extensions]
highlight =

[web]
encoding = "UTF-8"
baseurl = {{.BaseURL}}
allow_push = *
push_ssl = False
allow_archive = gz, zip
style = {{.Style}}
pygments_style = colorful
highlightonlymatchfilename = False
refreshinterval = {{.RefreshInterval}}

[paths]
/ = {{.Root}}/_hg/*
`))

// ConfigOptions carries the tunable parts of the generated hgweb config.
type ConfigOptions struct {
	BaseURL         string
	Style           string
	RefreshInterval int
}

// Materialize renders the hgweb config for root and writes it to
// <root>/_web/hgweb.config, replacing any previous file. It returns the path
// written.
func Materialize(root string, opts ConfigOptions) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("invalid root %q: %w", root, err)
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "/hg"
	}
	if opts.Style == "" {
		opts.Style = "monoblue"
	}

	var buf bytes.Buffer
	if err := configTmpl.Execute(&buf, struct {
		ConfigOptions
		Root string
	}{opts, filepath.ToSlash(absRoot)}); err != nil {
		return "", fmt.Errorf("failed to render hgweb config: %w", err)
	}

	webDir := filepath.Join(absRoot, "_web")
	if err := os.MkdirAll(webDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", webDir, err)
	}

	path := filepath.Join(webDir, "hgweb.config")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write hgweb config: %w", err)
	}
	return path, nil
}
