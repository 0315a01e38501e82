// Package web embeds the Hub's static asset bundle and page templates.
// Both are treated as external, mechanical collaborators by the core
// design; this package only carries them, it has no logic of its own.
package web

import "embed"

//go:embed static
var Static embed.FS

//go:embed templates
var Templates embed.FS
