// Package set indexes the cycles of a stepwise heating experiment by peak
// temperature.
//
// Each cycle of a step series is heated a little further than the one
// before. A [Set] owns the cycles, keyed by their peak temperature, and
// shares a single furnace between them. Keys are unique; lookups are exact.
package set
