package sheet

// Demo returns the bundled demonstration dataset: one week of field-tool
// activity on a single well site. It deliberately uses non-canonical header
// names so the demo also exercises schema resolution.
func Demo() RawSheet {
	return RawSheet{
		Name:   "Field Operations",
		Header: []string{"Unit", "Start", "End", "Activity", "Category", "Location"},
		Rows: [][]string{
			{"FT1", "2024-06-15 06:00", "2024-06-15 11:30", "operating", "fishing", "Well AE-47"},
			{"FT2", "2024-06-15 08:00", "2024-06-15 12:00", "operating", "fishing", "Well AE-47"},
			{"FT1", "2024-06-15 11:30", "2024-06-15 13:00", "idle", "fishing", "Well AE-47"},
			{"FT2", "2024-06-15 13:00", "2024-06-15 17:30", "operating", "fishing", "Well AE-47"},
			{"FT3", "2024-06-16 06:30", "2024-06-16 14:00", "operating", "milling", "Well AE-47"},
			{"FT2", "2024-06-16 07:00", "2024-06-16 15:00", "operating", "fishing", "Well AE-47"},
			{"FT4", "2024-06-16 09:00", "2024-06-16 13:30", "operating", "milling", "Well AE-47"},
			{"FT3", "2024-06-16 14:00", "2024-06-16 16:00", "maintenance", "milling", "Well AE-47"},
			{"FT3", "2024-06-17 05:00", "2024-06-17 16:30", "operating", "milling", "Well AE-47"},
			{"FT5", "2024-06-17 06:00", "2024-06-17 14:00", "operating", "fishing", "Well AE-47"},
			{"FT6", "2024-06-17 08:00", "2024-06-17 18:00", "operating", "milling", "Well AE-47"},
			{"FT5", "2024-06-17 14:00", "2024-06-17 15:30", "idle", "fishing", "Well AE-47"},
			{"FT4", "2024-06-18 06:00", "2024-06-18 12:00", "operating", "milling", "Well AE-47"},
			{"FT7", "2024-06-18 07:30", "2024-06-18 16:30", "operating", "fishing", "Well AE-47"},
			{"FT6", "2024-06-18 10:00", "2024-06-18 12:00", "maintenance", "milling", "Well AE-47"},
			{"FT5", "2024-06-19 06:00", "2024-06-19 11:00", "operating", "fishing", "Well AE-47"},
			{"FT8", "2024-06-19 09:00", "2024-06-19 14:00", "operating", "fishing", "Well AE-47"},
			{"FT7", "2024-06-19 12:00", "2024-06-19 15:00", "idle", "fishing", "Well AE-47"},
			{"FT6", "2024-06-20 06:30", "2024-06-20 12:30", "operating", "milling", "Well AE-47"},
			{"FT8", "2024-06-20 08:00", "2024-06-20 10:30", "operating", "fishing", "Well AE-47"},
			{"FT6", "2024-06-20 12:30", "2024-06-20 14:00", "maintenance", "milling", "Well AE-47"},
			{"FT7", "2024-06-20 22:00", "2024-06-21 02:00", "operating", "fishing", "Well AE-47"},
			{"FT7", "2024-06-21 06:00", "2024-06-21 10:00", "operating", "fishing", "Well AE-47"},
			{"FT8", "2024-06-21 07:00", "2024-06-21 12:30", "operating", "fishing", "Well AE-47"},
			{"FT1", "2024-06-21 09:00", "2024-06-21 11:00", "idle", "fishing", "Well AE-47"},
		},
	}
}
