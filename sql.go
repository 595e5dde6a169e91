package folio

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
)

// Value types are stored as exact decimal text and ISO dates.

func (m Money) Value() (driver.Value, error)    { return m.value.Value() }
func (m *Money) Scan(src any) error             { return m.value.Scan(src) }
func (t Quantity) Value() (driver.Value, error) { return t.value.Value() }
func (t *Quantity) Scan(src any) error          { return t.value.Scan(src) }

func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

func (d *Date) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into a date", src)
	}
	day, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = day
	return nil
}

var (
	_ driver.Valuer = Money{}
	_ sql.Scanner   = (*Money)(nil)
	_ driver.Valuer = Quantity{}
	_ sql.Scanner   = (*Quantity)(nil)
	_ driver.Valuer = Date{}
	_ sql.Scanner   = (*Date)(nil)
)
