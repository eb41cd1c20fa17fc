package models

// Consultation store fields usable in remote predicates and ordering.
const (
	FieldStudentID    = "studentId"
	FieldType         = "type"
	FieldConsultantID = "consultantId"
	FieldCategory     = "category"
	FieldSubject      = "subject"
	FieldDate         = "date"
	FieldCreatedAt    = "createdAt"
)

// EqualityPredicate constrains a store field to a single value.
type EqualityPredicate struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// AnyOfPredicate constrains a store field to one of several values. FoldCase compares the
// trimmed, lower-cased stored value.
type AnyOfPredicate struct {
	Field    string   `json:"field"`
	Values   []string `json:"values"`
	FoldCase bool     `json:"foldCase,omitempty"`
}

// OrderClause orders store results by a field.
type OrderClause struct {
	Field      string `json:"field"`
	Descending bool   `json:"descending"`
}

// ConsultationQuery is the remote half of a split filter: equality predicates, ordering and a cap.
// Limit <= 0 means unbounded.
type ConsultationQuery struct {
	Equals  []EqualityPredicate `json:"equals,omitempty"`
	AnyOf   []AnyOfPredicate    `json:"anyOf,omitempty"`
	OrderBy []OrderClause       `json:"orderBy,omitempty"`
	Limit   int                 `json:"limit,omitempty"`
}
