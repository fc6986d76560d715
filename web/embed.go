package web

import "embed"

// Templates embeds the inventory page templates.
//
//go:embed templates/*.html
var Templates embed.FS

// Static embeds the stylesheet.
//
//go:embed static/*
var Static embed.FS
