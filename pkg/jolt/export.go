package jolt

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// exportRecord is the machine-readable projection of a LogRecord. The
// sample interval and scale ride along so a consumer can reconstruct
// physical units without knowing the device geometry.
type exportRecord struct {
	ID                uint8  `json:"id" cbor:"id"`
	Timestamp         uint16 `json:"timestamp_s" cbor:"timestamp_s"`
	InterruptRegister string `json:"interrupt_register" cbor:"interrupt_register"`
	SampleIntervalMS  int    `json:"sample_interval_ms" cbor:"sample_interval_ms"`
	MilligPerLSB      int    `json:"mg_per_lsb" cbor:"mg_per_lsb"`
	X                 []int8 `json:"x" cbor:"x"`
	Y                 []int8 `json:"y" cbor:"y"`
	Z                 []int8 `json:"z" cbor:"z"`
}

func newExportRecord(r *LogRecord) exportRecord {
	return exportRecord{
		ID:                r.ID(),
		Timestamp:         r.Timestamp(),
		InterruptRegister: r.InterruptString(),
		SampleIntervalMS:  int(SampleInterval / time.Millisecond),
		MilligPerLSB:      MilligPerLSB,
		X:                 r.X(),
		Y:                 r.Y(),
		Z:                 r.Z(),
	}
}

// WriteJSON writes records as an indented JSON array
func WriteJSON(w io.Writer, records []*LogRecord) error {
	out := make([]exportRecord, 0, len(records))
	for _, r := range records {
		out = append(out, newExportRecord(r))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// WriteCBOR writes records as a CBOR array
func WriteCBOR(w io.Writer, records []*LogRecord) error {
	out := make([]exportRecord, 0, len(records))
	for _, r := range records {
		out = append(out, newExportRecord(r))
	}
	data, err := cbor.Marshal(out)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// WriteCSV writes one row per sample in long form, ready for spreadsheet
// or pandas import.
func WriteCSV(w io.Writer, records []*LogRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"log_id", "timestamp_s", "sample", "t_ms", "x", "y", "z"}); err != nil {
		return err
	}

	intervalMS := int(SampleInterval / time.Millisecond)
	for _, r := range records {
		x, y, z := r.X(), r.Y(), r.Z()
		for i := range x {
			row := []string{
				strconv.Itoa(int(r.ID())),
				strconv.Itoa(int(r.Timestamp())),
				strconv.Itoa(i),
				strconv.Itoa(i * intervalMS),
				strconv.Itoa(int(x[i])),
				strconv.Itoa(int(y[i])),
				strconv.Itoa(int(z[i])),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
