package instances

import "github.com/opentransit/crewd/core/model"

// Small returns a 20 shift weekday table covering an early, a midday, and a
// late service block.
func Small() model.Instance {
	return model.Instance{
		Name: "small",
		Shifts: []model.Shift{
			{ID: 0, Start: 300, End: 390},   // 05:00 06:30
			{ID: 1, Start: 330, End: 420},   // 05:30 07:00
			{ID: 2, Start: 395, End: 490},   // 06:35 08:10
			{ID: 3, Start: 430, End: 500},   // 07:10 08:20
			{ID: 4, Start: 525, End: 630},   // 08:45 10:30
			{ID: 5, Start: 540, End: 645},   // 09:00 10:45
			{ID: 6, Start: 540, End: 655},   // 09:00 10:55
			{ID: 7, Start: 635, End: 700},   // 10:35 11:40
			{ID: 8, Start: 650, End: 750},   // 10:50 12:30
			{ID: 9, Start: 660, End: 760},   // 11:00 12:40
			{ID: 10, Start: 780, End: 870},  // 13:00 14:30
			{ID: 11, Start: 790, End: 900},  // 13:10 15:00
			{ID: 12, Start: 875, End: 980},  // 14:35 16:20
			{ID: 13, Start: 910, End: 970},  // 15:10 16:10
			{ID: 14, Start: 960, End: 1065}, // 16:00 17:45
			{ID: 15, Start: 1010, End: 1110}, // 16:50 18:30
			{ID: 16, Start: 1080, End: 1170}, // 18:00 19:30
			{ID: 17, Start: 1115, End: 1200}, // 18:35 20:00
			{ID: 18, Start: 1200, End: 1310}, // 20:00 21:50
			{ID: 19, Start: 1320, End: 1410}, // 22:00 23:30
		},
	}
}
