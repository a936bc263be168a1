// Package cli provides the interactive pagekeeper command-line publisher.
//
// It wires configuration, the client-local state database, the hosting
// provider client, and an interactive REPL that edits the site content and
// publishes it as single commits. Typical flow: log in with the App private
// key (from a file or the encrypted local cache), load the working copy
// from the publish branch, then run publish commands.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
