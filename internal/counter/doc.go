// Package counter coalesces frequent counter updates in memory and writes
// them to storage in bounded groups.
//
// Increment only touches the in-memory map. Flush swaps the map out, persists
// every entry and merges failed entries back so they are retried on the next
// flush. For every id, increments always equal what was persisted plus what
// is still buffered.
package counter
