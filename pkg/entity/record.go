package entity

import (
	"reflect"

	"github.com/natserract/forcekit/pkg/force"
)

// attributesField is the envelope the REST API attaches to every record. It is
// never written back.
const attributesField = "attributes"

// Record is one instance of a defined type: a snapshot of remote field values
// plus a copy of the values as originally fetched. The copy exists only to
// compute the changed-field diff sent by Save.
type Record struct {
	fields   map[string]interface{}
	original map[string]interface{}
}

func newRecord() *Record {
	return &Record{
		fields:   map[string]interface{}{},
		original: map[string]interface{}{},
	}
}

func newRecordFromSObject(obj force.SObject) *Record {
	rec := newRecord()
	for k, v := range obj {
		rec.fields[k] = v
		rec.original[k] = v
	}
	return rec
}

// ID returns the record identifier, or the empty string for unsaved records.
func (r *Record) ID() string {
	id, _ := r.fields["Id"].(string)
	return id
}

// Get returns the current value of a field.
func (r *Record) Get(field string) interface{} {
	return r.fields[field]
}

// GetString returns the current value of a field as a string, or the empty
// string when the field is absent or not a string.
func (r *Record) GetString(field string) string {
	s, _ := r.fields[field].(string)
	return s
}

// Set changes the current value of a field. The original snapshot is
// untouched, so the change shows up in Changes until the record is saved.
func (r *Record) Set(field string, value interface{}) {
	r.fields[field] = value
}

// Fields returns a copy of the current field values.
func (r *Record) Fields() map[string]interface{} {
	out := make(map[string]interface{}, len(r.fields))
	for k, v := range r.fields {
		out[k] = v
	}
	return out
}

// Changes computes the diff of the current values against the original
// snapshot. The identifier field and the attributes envelope are always
// excluded, whatever their values.
func (r *Record) Changes() map[string]interface{} {
	changes := map[string]interface{}{}
	for k, v := range r.fields {
		if k == "Id" || k == attributesField {
			continue
		}
		orig, ok := r.original[k]
		if !ok || !reflect.DeepEqual(orig, v) {
			changes[k] = v
		}
	}
	return changes
}

// Dirty reports whether Save would send anything.
func (r *Record) Dirty() bool {
	return len(r.Changes()) > 0
}

// commit resets the original snapshot to the current values, called after a
// successful insert or save.
func (r *Record) commit() {
	r.original = make(map[string]interface{}, len(r.fields))
	for k, v := range r.fields {
		r.original[k] = v
	}
}
