// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

// Command ankictl calls AnkiConnect actions from the shell. It talks to
// ankibridge or to Anki itself.
//
//	ankictl version
//	ankictl add --deck Default --model Basic --field Front=hola --field Back=hello
//	ankictl find 'deck:Default'
//	ankictl store ./clip.mp3
//	ankictl store --from-url https://example.com/a.png --name a.png
//
// ANKICTL_URL and ANKICTL_API_KEY provide defaults for --url and --key.
package main

import "os"

func main() {
	if err := newRootCmd(newCLI()).Execute(); err != nil {
		os.Exit(1)
	}
}
