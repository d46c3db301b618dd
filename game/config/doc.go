// Package config provides the season catalog of ADC Hub.
//
// Season definitions are stored as JSON or YAML files in the seasons directory.
// Each season carries:
//   - the RobotEvents season id used by event search and world skills
//   - a display name and short name
//   - the program code and start/end years
//   - whether it is the active season
//
// Usage:
//
//	catalog, err := config.NewManager("seasons")
//	if err != nil {
//		return err
//	}
//
//	// Default season: newest active one
//	season := catalog.GetDefault()
//
//	// All seasons, newest first
//	seasons, err := catalog.ListSeasons()
//
// When the directory holds no valid season a built-in definition of the current
// season is used so lookups still have a season id.
package config
