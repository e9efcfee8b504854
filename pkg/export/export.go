package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/opentransit/crewd/core/model"
	"github.com/opentransit/crewd/core/solver"
)

// WriteJSON writes the solve result to w in JSON format.
func WriteJSON(w io.Writer, res solver.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// WriteCSV writes the duty sheets to w in CSV format, one row per timeline
// entry including setup, breaks and cleanup.
func WriteCSV(w io.Writer, res solver.Result, rules model.Rules) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"instance", "duty", "kind", "start_min", "end_min", "shift_id"}); err != nil {
		return err
	}
	for di, duty := range res.Roster.Duties {
		for _, e := range duty.Timeline(rules) {
			shiftID := ""
			if e.ShiftID != 0 {
				shiftID = strconv.Itoa(e.ShiftID)
			}
			rec := []string{
				res.Instance,
				strconv.Itoa(di + 1),
				e.Kind,
				strconv.Itoa(e.Start),
				strconv.Itoa(e.End),
				shiftID,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
