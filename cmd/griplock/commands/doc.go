// Package commands defines the griplock CLI: holder authentication, wallet
// and stealth address derivation, and pairing with a remote dashboard
// through a relay.
package commands
