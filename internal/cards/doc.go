// Package cards models the owned card collection used to build a spread.
//
// The static catalog maps on-chain token ids to card metadata. Holdings
// returned by the ownership indexer are expanded into one CardAsset per owned
// unit, sorted by rarity, and held in a versioned Collection. Every user edit
// (favorite toggle, reroll) produces a new snapshot instead of mutating the
// current one, so readers holding an older snapshot never observe a partial
// update.
package cards
