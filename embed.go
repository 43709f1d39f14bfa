package wikiedit

import "embed"

// EmbeddedAssets contains the glue script and style shipped with the editor:
// editor.js, editor.css
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
