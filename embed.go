package printsite

import "embed"

// EmbeddedAssets contains the scripts and styles shipped with the site:
// site.js, site.css
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
