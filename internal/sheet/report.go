package sheet

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/JonMunkholm/catalogimport/internal/core"
)

// ReportHeader is the header row of an error report.
var ReportHeader = []string{"_line", "_identifier", "_error"}

// WriteErrorReport writes one CSV line per rejected row so vendors can fix
// their sheet. Duplicate groups list every row they cover.
func WriteErrorReport(w io.Writer, rows []core.RowError) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ReportHeader); err != nil {
		return err
	}

	for _, re := range rows {
		line := strconv.Itoa(re.RowNumber)
		if len(re.RowNumbers) > 0 {
			nums := make([]string, len(re.RowNumbers))
			for i, n := range re.RowNumbers {
				nums[i] = strconv.Itoa(n)
			}
			line = strings.Join(nums, " ")
		}
		if err := cw.Write([]string{line, re.Identifier, strings.Join(re.Messages, "; ")}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
