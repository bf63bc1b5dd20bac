// Package singleinstance keeps a second clicker from installing a competing
// keyboard hook.
package singleinstance

import "errors"

// ErrAlreadyRunning is returned by TryLock when another instance holds the lock.
var ErrAlreadyRunning = errors.New("another instance is already running")

// DefaultName is the lock identifier shared by every instance for one user.
const DefaultName = "nikke-clicker"
