package display

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Go-routine-4595/faultzero-sim/model"
)

// Display prints every alert batch as one JSON line.
type Display struct {
	out io.Writer
}

func NewDisplay() Display {
	return Display{out: os.Stdout}
}

func NewDisplayTo(w io.Writer) Display {
	return Display{out: w}
}

func (d Display) SendAlerts(batch model.AlertBatch) error {
	var (
		buf []byte
		err error
	)

	buf, err = json.Marshal(batch)
	if err != nil {
		return errors.Join(err, errors.New("failed to marshal alert batch display.SendAlerts"))
	}
	if _, err = fmt.Fprintln(d.out, string(buf)); err != nil {
		return errors.Join(err, errors.New("failed to write alert batch display.SendAlerts"))
	}

	return nil
}
