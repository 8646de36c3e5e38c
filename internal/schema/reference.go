package schema

// Field names the canonical columns an EquipmentEvent is built from.
type Field string

const (
	FieldEquipmentID  Field = "equipment_id"
	FieldStartTime    Field = "start_time"
	FieldEndTime      Field = "end_time"
	FieldDuration     Field = "duration"
	FieldDurationUnit Field = "duration_unit"
	FieldEventType    Field = "event_type"
	FieldCategory     Field = "category"
	FieldLocation     Field = "location"
)

// fieldOrder is the resolution priority. Earlier fields claim columns first,
// so an ambiguous column goes to the more critical field.
var fieldOrder = []Field{
	FieldEquipmentID,
	FieldStartTime,
	FieldEndTime,
	FieldDuration,
	FieldDurationUnit,
	FieldEventType,
	FieldCategory,
	FieldLocation,
}

// Reference is the immutable read-only bundle shared by every pipeline run:
// header synonyms and resolution thresholds. Build it once at startup and
// never mutate it afterwards.
type Reference struct {
	Synonyms      map[Field][]string
	MinConfidence float64
	SampleRows    int
}

// DefaultReference returns the built-in synonym lists covering the header
// spellings seen in field-operation exports.
func DefaultReference() *Reference {
	return &Reference{
		MinConfidence: 0.5,
		SampleRows:    20,
		Synonyms: map[Field][]string{
			FieldEquipmentID: {
				"equipment id", "equipment", "unit", "unit id", "asset",
				"asset id", "machine", "tool", "tool id", "device", "rig",
				"equipment no",
			},
			FieldStartTime: {
				"start time", "start", "started", "start date", "begin",
				"from", "time in", "date started",
			},
			FieldEndTime: {
				"end time", "end", "ended", "end date", "finish", "stop",
				"to", "time out", "date ended",
			},
			FieldDuration: {
				"duration", "hours", "minutes", "elapsed", "run time",
				"runtime", "total time", "time spent",
			},
			FieldDurationUnit: {
				"duration unit", "time unit", "uom", "unit of measure",
			},
			FieldEventType: {
				"event type", "type", "status", "activity", "state",
				"operation", "mode",
			},
			FieldCategory: {
				"category", "job type", "class", "group", "service",
			},
			FieldLocation: {
				"location", "site", "well", "lease", "county", "area",
				"field",
			},
		},
	}
}
