package entity

import (
	"testing"

	"github.com/natserract/forcekit/pkg/force"
	"github.com/stretchr/testify/assert"
)

func TestRecord_Changes(t *testing.T) {
	t.Run("freshly fetched record has no changes", func(t *testing.T) {
		rec := newRecordFromSObject(force.SObject{
			"Id":       "003000000000001",
			"LastName": "Stone",
		})
		assert.Empty(t, rec.Changes())
		assert.False(t, rec.Dirty())
	})

	t.Run("set field shows up in diff", func(t *testing.T) {
		rec := newRecordFromSObject(force.SObject{
			"Id":       "003000000000001",
			"LastName": "Stone",
			"Email":    "old@example.com",
		})
		rec.Set("Email", "new@example.com")

		changes := rec.Changes()
		assert.Equal(t, map[string]interface{}{"Email": "new@example.com"}, changes)
		assert.True(t, rec.Dirty())
	})

	t.Run("identifier field is always excluded", func(t *testing.T) {
		rec := newRecordFromSObject(force.SObject{"Id": "003000000000001"})
		rec.Set("Id", "003000000000002")
		assert.Empty(t, rec.Changes())
	})

	t.Run("attributes envelope is always excluded", func(t *testing.T) {
		rec := newRecordFromSObject(force.SObject{
			"Id": "003000000000001",
			"attributes": map[string]interface{}{
				"type": "Contact",
			},
		})
		rec.Set("attributes", map[string]interface{}{"type": "Lead"})
		assert.Empty(t, rec.Changes())
	})

	t.Run("new field counts as change", func(t *testing.T) {
		rec := newRecordFromSObject(force.SObject{"Id": "003000000000001"})
		rec.Set("Phone", "555-0100")
		assert.Equal(t, map[string]interface{}{"Phone": "555-0100"}, rec.Changes())
	})

	t.Run("commit resets the original snapshot", func(t *testing.T) {
		rec := newRecordFromSObject(force.SObject{
			"Id":       "003000000000001",
			"LastName": "Stone",
		})
		rec.Set("LastName", "Ward")
		assert.True(t, rec.Dirty())

		rec.commit()
		assert.False(t, rec.Dirty())
		assert.Equal(t, "Ward", rec.GetString("LastName"))
	})
}

func TestRecord_Accessors(t *testing.T) {
	rec := newRecordFromSObject(force.SObject{
		"Id":    "003000000000001",
		"Count": float64(3),
	})

	assert.Equal(t, "003000000000001", rec.ID())
	assert.Equal(t, float64(3), rec.Get("Count"))
	assert.Equal(t, "", rec.GetString("Count"), "non-string field reads as empty string")
	assert.Nil(t, rec.Get("Missing"))

	t.Run("Fields returns a copy", func(t *testing.T) {
		fields := rec.Fields()
		fields["Id"] = "tampered"
		assert.Equal(t, "003000000000001", rec.ID())
	})
}
