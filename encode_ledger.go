package folio

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// DecodeTransactions decodes transactions from a stream of JSONL data, validating
// each line. Empty lines are skipped. The order of the stream is preserved.
func DecodeTransactions(r io.Reader) ([]Transaction, error) {
	var txs []Transaction
	scanner := bufio.NewScanner(r)

	line := 0
	for scanner.Scan() {
		line++
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}

		var tx Transaction
		if err := json.Unmarshal(lineBytes, &tx); err != nil {
			return nil, fmt.Errorf("could not decode line %d %q: %w", line, string(lineBytes), err)
		}
		tx, err := tx.Validate()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		txs = append(txs, tx)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading transactions: %w", err)
	}
	return txs, nil
}

// EncodeTransaction writes a single transaction as one JSONL line.
func EncodeTransaction(w io.Writer, tx Transaction) error {
	data, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("could not encode transaction %q: %w", tx.ID, err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// EncodeTransactions writes every transaction in order, one per line.
func EncodeTransactions(w io.Writer, txs []Transaction) error {
	for _, tx := range txs {
		if err := EncodeTransaction(w, tx); err != nil {
			return err
		}
	}
	return nil
}

// orderedObject writes a JSON object whose keys keep their insertion order,
// so that ledger lines stay diffable. The first marshaling error sticks.
type orderedObject struct {
	buf bytes.Buffer
	err error
}

func (o *orderedObject) set(key string, value any) {
	if o.err != nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		o.err = fmt.Errorf("field %q: %w", key, err)
		return
	}
	if o.buf.Len() == 0 {
		o.buf.WriteByte('{')
	} else {
		o.buf.WriteByte(',')
	}
	fmt.Fprintf(&o.buf, "%q:", key)
	o.buf.Write(data)
}

func (o *orderedObject) bytes() ([]byte, error) {
	if o.err != nil {
		return nil, o.err
	}
	if o.buf.Len() == 0 {
		return []byte("{}"), nil
	}
	return append(o.buf.Bytes(), '}'), nil
}
