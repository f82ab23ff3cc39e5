// Package seed embeds the default prompt texts and concert dataset.
package seed

import _ "embed"

//go:embed prompts.json
var Prompts []byte

//go:embed concerts.json
var Concerts []byte
