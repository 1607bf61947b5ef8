// Package storage owns the bot's mutable state: the in-memory cache
// every reader works from, and the optional on-disk archive that lets a
// restart pick up where the previous run left off.
package storage

import (
	"sync"

	"github.com/gcalmettes/christmas-elf-officer/aoc"
)

// Cache guards the process-wide leaderboard state with a single lock.
// Private completions and globally ranked completions are kept on
// separate boards so season scoring never mixes in top-100 strangers.
// The data volume stays small, so one coarse lock held only for the
// in-memory merge or copy is all the synchronisation needed; network
// calls and rendering always happen outside it.
type Cache struct {
	mu      sync.Mutex
	private *aoc.Snapshot
	global  *aoc.Leaderboard
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{
		private: aoc.NewSnapshot(),
		global:  aoc.NewLeaderboard(),
	}
}

// UpdatePrivate folds a fresh private snapshot in and returns the board
// as it stood before and after the merge, both independent copies, so
// callers can diff and render without holding the lock. first reports
// whether this was the initial load.
func (c *Cache) UpdatePrivate(in *aoc.Snapshot) (before, after *aoc.Leaderboard, first bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	first = c.private.Board.Len() == 0
	before = c.private.Board.Clone()
	c.private.Merge(in)
	after = c.private.Board.Clone()
	return before, after, first
}

// UpdateGlobal merges one poll of the global daily board and returns
// the facts not seen before along with a copy of the merged board.
func (c *Cache) UpdateGlobal(in *aoc.Leaderboard) (added []aoc.Entry, board *aoc.Leaderboard) {
	c.mu.Lock()
	defer c.mu.Unlock()
	added = in.Difference(c.global)
	c.global.Merge(in)
	return added, c.global.Clone()
}

// PrivateSnapshot returns an independent copy of the private view.
func (c *Cache) PrivateSnapshot() *aoc.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.private.Clone()
}

// GlobalBoard returns an independent copy of the accumulated global
// entries.
func (c *Cache) GlobalBoard() *aoc.Leaderboard {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.global.Clone()
}

// Sizes reports the entry counts of both boards.
func (c *Cache) Sizes() (private, global int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.private.Board.Len(), c.global.Len()
}
