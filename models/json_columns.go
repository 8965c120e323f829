package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/atelierworks/jewelqc-backend/qc"
)

// JSON-serialized columns. SQLite stores these as TEXT; the Valuer/Scanner
// pair keeps the Go side strongly typed.

// DefectList stores a report's defects on the inspection record.
type DefectList []qc.Defect

func (l DefectList) Value() (driver.Value, error) {
	if l == nil {
		l = DefectList{}
	}
	return json.Marshal(l)
}

func (l *DefectList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

// LifecycleEventList stores a rework job's append-only audit trail.
type LifecycleEventList []qc.LifecycleEvent

func (l LifecycleEventList) Value() (driver.Value, error) {
	if l == nil {
		l = LifecycleEventList{}
	}
	return json.Marshal(l)
}

func (l *LifecycleEventList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

// StringList stores a flat list of strings (e.g. evidence image paths).
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

func scanJSON(value, dest interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	}
	return fmt.Errorf("unsupported column type %T for JSON scan", value)
}
