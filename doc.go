// Package coinfolio provides the types and functions behind a personal
// cryptocurrency tracker: browsing the top coins by market capitalisation,
// keeping a set of favorite coins and maintaining a holdings portfolio valued
// at current prices.
//
// The core functionalities include:
//   - Market list view: a pure pipeline that filters a market snapshot by name,
//     restricts it to favorites, sorts it with a stable comparator and cuts the
//     requested page (see ComputeView and ListState).
//   - Portfolio valuation: joining positions with a price snapshot and a coin
//     catalog into valued rows and a grand total (see ComputeRows).
//   - Portfolio mutations: add-or-merge, direct edit and removal of positions
//     against a PositionStore, mirrored in memory only once persisted (see
//     Portfolio).
//   - Sessions: an explicit Session value, created at sign-in and closed at
//     sign-out, carrying the user identity and the quote currency resolved once
//     for the whole session.
//
// External collaborators (market data, persistence, authentication and avatar
// storage) are expressed as interfaces, implemented by the coingecko, sqlite,
// postgres and avatar packages. The `cfl` command-line tool wires them together.
package coinfolio
