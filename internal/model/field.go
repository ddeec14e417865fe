package model

// FieldState distinguishes "not yet computed" from "computed but empty".
type FieldState string

const (
	// FieldPending means the owning stage has not run yet. The field carries
	// a human-readable placeholder such as "查询中...".
	FieldPending FieldState = "pending"
	// FieldSet means a stage produced a real value.
	FieldSet FieldState = "set"
	// FieldNoData means the owning stage ran and found nothing. The field
	// carries a terminal placeholder such as "暂无营收数据".
	FieldNoData FieldState = "nodata"
)

// Field is a profile attribute with an explicit computation state. The zero
// value is a pending field with an empty placeholder.
type Field struct {
	State FieldState `json:"state"`
	Value string     `json:"value"`
}

// Pending returns a not-yet-computed field carrying a placeholder.
func Pending(placeholder string) Field {
	return Field{State: FieldPending, Value: placeholder}
}

// Set returns a computed field with a real value.
func Set(value string) Field {
	return Field{State: FieldSet, Value: value}
}

// NoData returns a computed-but-empty field carrying a terminal placeholder.
func NoData(placeholder string) Field {
	return Field{State: FieldNoData, Value: placeholder}
}

// IsSet reports whether the field holds a real value.
func (f Field) IsSet() bool { return f.State == FieldSet }

// IsPending reports whether the owning stage has not produced the field yet.
func (f Field) IsPending() bool { return f.State == "" || f.State == FieldPending }

// String returns the display text: the value when set, the placeholder
// otherwise.
func (f Field) String() string { return f.Value }

// Or returns the field's value when set, otherwise fallback.
func (f Field) Or(fallback string) string {
	if f.IsSet() {
		return f.Value
	}
	return fallback
}
