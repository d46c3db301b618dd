// Package settings stores the user preferences of ADC Hub: the selected
// season, the world-skills grade level, favorite teams, the color overrides
// of the top bar and buttons, and the minimalistic, vibration and date filter
// toggles.
//
// Two Store implementations are provided. FileStore keeps the settings in a
// single JSON file written atomically. SQLStore keeps them in one row of a
// SQLite table through gorm, with favorite teams held in a JSON column.
// The server picks one with the settings.backend configuration key.
//
// Favorites are always stored upper-cased, sorted and without duplicates.
package settings
