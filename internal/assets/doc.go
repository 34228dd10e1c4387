// Package assets fetches static spread assets (card clips, template frames,
// the ambiance bed) by their naming-convention paths such as /cards/{id}.mp4.
//
// The asset root is either a local directory or an http(s) base URL. Fetched
// assets are cached for the life of a Cache because the same card clip feeds
// both the audio and the video chain.
package assets
