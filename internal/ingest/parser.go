// Package ingest turns delimited text files into serialized row
// batches ready for bulk insertion.
package ingest

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/hndinh/tabstore/internal/alias/util"
	"github.com/hndinh/tabstore/internal/logging"
	"github.com/hndinh/tabstore/internal/record"
	"github.com/hndinh/tabstore/internal/storage"
)

// DataObject is the parser's output: serialized rows plus the totals
// the page manager validates against. SerializedSize includes the
// per-row slot overhead so it equals the space the batch will consume.
type DataObject struct {
	Rows           [][]byte
	SerializedSize int
	NumRows        int
}

type Parser struct {
	logger logging.Logger
}

func NewParser(logger logging.Logger) *Parser {
	if logger == nil {
		logger = logging.Global()
	}
	return &Parser{logger: logger}
}

// ParseFile reads a delimited file whose first line names the schema's
// columns in order. Rows that fail to split, convert or validate are
// logged and skipped; the totals cover only the rows that survived.
func (p *Parser) ParseFile(path string, delimiter rune, schema record.Schema) (DataObject, error) {
	f, err := os.Open(path)
	if err != nil {
		return DataObject{}, fmt.Errorf("open ingest file: %w", err)
	}
	defer util.CloseFileFunc(f)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return DataObject{}, fmt.Errorf("read header line: %w", err)
		}
		return DataObject{}, fmt.Errorf("ingest file %s is empty", path)
	}

	header := strings.Split(scanner.Text(), string(delimiter))
	if len(header) != schema.NumCols() {
		return DataObject{}, fmt.Errorf("header has %d columns, schema defines %d", len(header), schema.NumCols())
	}
	for i, col := range schema.Cols {
		if header[i] != col.Name {
			return DataObject{}, fmt.Errorf("header column %d is %q, schema says %q", i, header[i], col.Name)
		}
	}

	var out DataObject
	lineNo := 1
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}

		fields := strings.Split(line, string(delimiter))
		if len(fields) != schema.NumCols() {
			p.logger.Log(fmt.Sprintf("line %d: expected %d fields, got %d, skipping", lineNo, schema.NumCols(), len(fields)))
			continue
		}

		values := make([]record.Value, 0, schema.NumCols())
		ok := true
		for i, col := range schema.Cols {
			v, err := record.Convert(fields[i], col.Type)
			if err != nil {
				p.logger.Log(fmt.Sprintf("line %d column %d: %v, skipping row", lineNo, i, err))
				ok = false
				break
			}
			values = append(values, v)
		}
		if !ok {
			continue
		}

		row, err := record.NewRow(schema, values)
		if err != nil {
			p.logger.Log(fmt.Sprintf("line %d: %v, skipping row", lineNo, err))
			continue
		}

		data := row.Serialize()
		out.Rows = append(out.Rows, data)
		out.SerializedSize += len(data) + storage.SlotSize
		out.NumRows++
	}
	if err := scanner.Err(); err != nil {
		return DataObject{}, fmt.Errorf("read ingest file: %w", err)
	}

	p.logger.Log(fmt.Sprintf("parsed %d rows (%d bytes with slot overhead) from %s", out.NumRows, out.SerializedSize, path))
	return out, nil
}
