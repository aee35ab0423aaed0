// meta/meta.go
package meta

// MAX_TURNS caps how many turns an autoplay game may last.
const MAX_TURNS = 40

// GAMES is the default number of games per experiment.
const GAMES = 20

// SEED is the default dice seed.
const SEED = 1944

// SUBSCRIBER_BUFFER is the default per-subscriber update buffer.
const SUBSCRIBER_BUFFER = 16
