package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/tidwall/gjson"

	"github.com/osome-iu/osometweet"
	"github.com/osome-iu/osometweet/wrangle"
)

// lineWriter writes each data object as one JSON line.
type lineWriter struct {
	w       *bufio.Writer
	flatten bool
	count   int
	buf     bytes.Buffer
}

func newLineWriter(w io.Writer, flatten bool) *lineWriter {
	return &lineWriter{w: bufio.NewWriter(w), flatten: flatten}
}

// Count is the number of objects written so far.
func (lw *lineWriter) Count() int { return lw.count }

// WriteEnvelope writes every object under data. An array yields one line
// per element.
func (lw *lineWriter) WriteEnvelope(env *osometweet.Envelope) error {
	data := wrangle.Get(env.Data)
	switch {
	case data.IsArray():
		var err error
		data.ForEach(func(_, item gjson.Result) bool {
			err = lw.write([]byte(item.Raw))
			return err == nil
		})
		if err != nil {
			return err
		}
	case data.IsObject():
		if err := lw.write([]byte(data.Raw)); err != nil {
			return err
		}
	}
	return lw.w.Flush()
}

// WriteItem writes a single object and flushes it.
func (lw *lineWriter) WriteItem(raw []byte) error {
	if len(raw) == 0 {
		return nil
	}
	if err := lw.write(raw); err != nil {
		return err
	}
	return lw.w.Flush()
}

func (lw *lineWriter) write(raw []byte) error {
	lw.buf.Reset()
	if lw.flatten {
		var obj map[string]any
		if err := json.Unmarshal(raw, &obj); err != nil {
			return fmt.Errorf("flatten: %w", err)
		}
		flat, err := json.Marshal(wrangle.Flatten(obj, "."))
		if err != nil {
			return fmt.Errorf("flatten: %w", err)
		}
		lw.buf.Write(flat)
	} else if err := json.Compact(&lw.buf, raw); err != nil {
		return fmt.Errorf("compact: %w", err)
	}
	lw.buf.WriteByte('\n')
	if _, err := lw.w.Write(lw.buf.Bytes()); err != nil {
		return err
	}
	lw.count++
	return nil
}
