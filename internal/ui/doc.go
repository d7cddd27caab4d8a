// Package ui renders the live ACE dashboard in the terminal.
//
// The dashboard is a Bubble Tea program. It never talks to the network
// itself: it reads snapshots from the state store when the store signals a
// change, shows the newest notification from the notification feed, polls
// the session for the connection indicator, and hands key presses to a
// command dispatcher.
//
// Keys:
//
//	r     refresh status now
//	1-4   toggle feed assist on slot 0-3
//	s     stop feed assist on every slot
//	u     unload the current tool
//	q     quit
package ui
