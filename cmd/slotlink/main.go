// Command slotlink runs a link on simulated hardware: an arbiter that leases
// radio time, a two-channel lease timer and an ESB-style driver talking to a
// peer.
package main

func main() {
	Execute()
}
