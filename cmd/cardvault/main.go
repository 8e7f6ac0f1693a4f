// cardvault manages the archive of a card-game library: the trash of
// deleted packs and decks, the history of snapshots, and the retention
// policies that keep both bounded.
//
// Usage:
//
//	# Run the retention scheduler with the admin endpoint
//	cardvault run --config /etc/cardvault/config.yaml
//
//	# Preview a sweep of the trash
//	cardvault gc --collection trash --dry-run
//
//	# Restore a trashed deck
//	cardvault archive restore --collection trash deck-42
//
//	# Show the effective retention policies
//	cardvault policy show
package main

import "os"

func main() {
	os.Exit(Execute())
}
