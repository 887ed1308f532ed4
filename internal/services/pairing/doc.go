// Package pairing glues the relay session, key derivation, and the
// encrypted channel into the end-to-end pairing and signing flow consumed
// by the application surface.
//
// The flow: authenticate the holder (token read plus memorized factors),
// parse the scanned code, open the relay session, run the channel key
// agreement the moment the room connects, and only then announce the wallet
// address. Sign requests arriving from the dashboard are answered with
// sign results; both directions travel sealed once the key is established.
package pairing
