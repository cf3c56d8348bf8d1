// Package configs provides the embedded configuration template for dirsentry.
//
// The template is embedded at build time with //go:embed so it ships in
// every distribution, source builds included. `dirsentry config init`
// writes it verbatim; the commented YAML doubles as the config reference.
//
// Configuration hierarchy (see internal/config Load()):
//  1. Hardcoded defaults (internal/config NewConfig())
//  2. User config ($XDG_CONFIG_HOME/dirsentry/config.yaml)
//  3. Watch-root config (.dirsentry.yaml)
//  4. Environment variables (DIRSENTRY_*)
//
// To modify the template, edit config.example.yaml and rebuild.
package configs

import _ "embed"

// ConfigTemplate is the annotated default configuration.
// Written by `dirsentry config init`.
//
//go:embed config.example.yaml
var ConfigTemplate string
