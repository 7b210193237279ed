// Package flows embeds the flow documents shipped with hostflow.
package flows

import _ "embed"

// PodcastHost is the default guest-interview flow.
//
//go:embed podcast_host.yaml
var PodcastHost []byte
