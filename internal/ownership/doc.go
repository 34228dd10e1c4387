// Package ownership queries an NFT indexer for the cards an address holds.
//
// The client speaks the Alchemy getNFTsForOwner shape: results are paginated
// and the loop follows pageKey until the indexer stops returning one. Every
// failure is tagged as a metadata fetch error so callers can show it and let
// the user retry.
package ownership
