// Package config provides task preset and process settings management.
//
// The config package handles:
//   - Loading task presets from JSON files
//   - Preset validation and caching
//   - Default preset selection
//   - Preset discovery and listing
//   - Process settings from environment variables
//
// Preset Format:
//
// Presets are stored as JSON files in the configs directory. The file name
// without extension is the preset's config ID:
//
//	{
//	  "name": "classic",
//	  "description": "Six exercises on a 6x10 track",
//	  "rows": 6,
//	  "cols": 10,
//	  "bonus_roll_on_six": false,
//	  "tasks": [
//	    {"name": "Push-ups", "min_count": 10, "max_count": 50}
//	  ]
//	}
//
// The default preset is classic.json, else the first valid preset, else the
// built-in engine.DefaultGameConfig.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameConfig, err := manager.LoadConfig("quick")
//	presets, err := manager.ListConfigs()
//
//	settings, err := config.LoadSettings()
package config
